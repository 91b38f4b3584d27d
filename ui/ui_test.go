// SPDX-License-Identifier: MIT

package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRegistry() {
	mu.Lock()
	renderers = map[string]func() Renderer{}
	defaultName = ""
	mu.Unlock()
}

func TestMessageFormatting(t *testing.T) {
	assert.Equal(t, "plain", Msg("plain").String())
	assert.Equal(t, "3 items left", Msg("%d items left", 3).String())
	// Format verbs without args stay literal.
	assert.Equal(t, "100%", Msg("100%").String())
}

func TestConsoleSplitsStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &Console{Out: &out, Err: &errOut}
	c.Render(Msg("hello %s", "world"))
	c.Error(Msg("broken"))
	assert.Equal(t, "hello world\n", out.String())
	assert.Equal(t, "broken\n", errOut.String())
}

func TestRegisterAndGet(t *testing.T) {
	resetRegistry()
	var buf bytes.Buffer
	Register("buffer", func() Renderer { return &Console{Out: &buf, Err: &buf} }, false)

	r := Get("buffer")
	require.NotNil(t, r)
	r.Render(Msg("ping"))
	assert.Equal(t, "ping\n", buf.String())

	assert.Nil(t, Get("unknown"))
}

func TestDefaultFallsBackToConsole(t *testing.T) {
	resetRegistry()
	r := Default()
	require.NotNil(t, r)
	assert.IsType(t, &Console{}, r)
}

func TestDefaultSelection(t *testing.T) {
	resetRegistry()
	var a, b bytes.Buffer
	Register("a", func() Renderer { return &Console{Out: &a, Err: &a} }, true)
	Register("b", func() Renderer { return &Console{Out: &b, Err: &b} }, false)

	Default().Render(Msg("first"))
	assert.Equal(t, "first\n", a.String())

	SetDefault("b")
	Default().Render(Msg("second"))
	assert.Equal(t, "second\n", b.String())
}

func TestAvailableSorted(t *testing.T) {
	resetRegistry()
	Register("zeta", NewConsoleRenderer, false)
	Register("alpha", NewConsoleRenderer, false)
	assert.Equal(t, []string{"alpha", "zeta"}, Available())
}

func NewConsoleRenderer() Renderer { return NewConsole() }
