// SPDX-License-Identifier: MIT

package ui

import (
	"github.com/rs/zerolog"

	"github.com/pwt/go-utils/log"
)

// Logging routes messages through a structured logger instead of the
// process streams. Regular messages log at info level, errors at error
// level.
type Logging struct {
	logger zerolog.Logger
}

// NewLogging returns a renderer backed by logger.
func NewLogging(logger zerolog.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Render(m Message) { l.logger.Info().Msg(m.String()) }
func (l *Logging) Error(m Message)  { l.logger.Error().Msg(m.String()) }

// RegisterLogging registers a logging renderer under "logging", tagged
// with a ui component field. When asDefault is set it becomes the default
// renderer.
func RegisterLogging(logger zerolog.Logger, asDefault bool) {
	tagged := logger.With().Str(log.FieldComponent, "ui").Logger()
	Register("logging", func() Renderer { return NewLogging(tagged) }, asDefault)
}
