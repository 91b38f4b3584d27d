// SPDX-License-Identifier: MIT

package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSendsDefaultHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Get(context.Background(), "/ping")
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, srv.URL, got.Get("Referer"))
	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestRequestIDChangesPerRequest(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	for range 2 {
		res, err := c.Get(context.Background(), "/")
		require.NoError(t, err)
		res.Body.Close()
	}
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestStatusErrorOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Get(context.Background(), "/down")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Contains(t, statusErr.URL, "/down")
}

func TestText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "hello world")
	}))
	defer srv.Close()

	text, err := New(srv.URL).Text(context.Background(), "/greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := New(srv.URL).JSON(context.Background(), "/echo", map[string]string{"msg": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out["echo"])
}

func TestFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "moved")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	text, err := New(srv.URL).Text(context.Background(), "/old")
	require.NoError(t, err)
	assert.Equal(t, "moved", text)
}

func TestWithHeaderAndUserAgent(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	c := New(srv.URL, WithHeader("X-Api-Key", "secret"), WithUserAgent("probe/1.0"))
	res, err := c.Get(context.Background(), "/")
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "secret", got.Get("X-Api-Key"))
	assert.Equal(t, "probe/1.0", got.Get("User-Agent"))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Get(context.Background(), "/slow")
	require.Error(t, err)
	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	assert.True(t, urlErr.Timeout())
}

func TestErrorCategory(t *testing.T) {
	assert.Equal(t, "http error", errorCategory(&StatusError{Code: 500}))
	assert.Equal(t, "timeout", errorCategory(context.DeadlineExceeded))
	assert.Equal(t, "connection error", errorCategory(&url.Error{Op: "Get", URL: "http://x", Err: io.EOF}))
	assert.Equal(t, "request error", errorCategory(io.EOF))
}