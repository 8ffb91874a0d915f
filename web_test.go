package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/memesweeper/games"
)

func newTestServer(t *testing.T, cfg *Config, opts ...games.Option) (*httptest.Server, map[games.Mode]*GameManager) {
	t.Helper()

	errs := make(chan error, 64)
	mux, managers := newRouter(cfg, errs, opts...)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		for _, gm := range managers {
			gm.closeAll()
		}
		srv.Close()
	})

	return srv, managers
}

// noRedirects returns a client that reports redirects instead of following them.
func noRedirects() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := noRedirects().Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestRouter_StaticRoutes(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	t.Run("Health check", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/healthz")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Ok\n", body)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "img-src 'self' data: https:")
		assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
	})

	t.Run("Version", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/version")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "memesweeper v"+releaseVersion+"\n", body)
	})

	t.Run("Home page links both modes", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, `href="/solo"`)
		assert.Contains(t, body, `href="/versus"`)
		assert.Contains(t, body, `/favicon.svg`)
	})

	t.Run("Robots", func(t *testing.T) {
		_, body := get(t, srv.URL+"/robots.txt")

		assert.Contains(t, body, "Disallow: /solo/")
		assert.Contains(t, body, "Disallow: /versus/")
	})

	t.Run("Embedded assets", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/assets/memesweeper/app.css")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, ".grid")

		resp, body = get(t, srv.URL+"/assets/memesweeper/app.js")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/javascript; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, "WebSocket")

		resp, _ = get(t, srv.URL+"/assets/memesweeper/missing.js")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Favicons", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/favicon.svg")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
		assert.True(t, strings.HasPrefix(body, "<svg"))

		resp, _ = get(t, srv.URL+"/favicons/site.webmanifest")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/manifest+json", resp.Header.Get("Content-Type"))

		resp, _ = get(t, srv.URL+"/favicons/nope.png")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Profiling is off by default", func(t *testing.T) {
		resp, _ := get(t, srv.URL+"/pprof/heap")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRouter_Prefix(t *testing.T) {
	// Given: a server mounted below /games with profiling on
	cfg := testConfig()
	cfg.prefix = "/games"
	cfg.profile = true
	srv, _ := newTestServer(t, cfg)

	// When/Then: routes answer under the prefix
	resp, _ := get(t, srv.URL+"/games/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/games/solo")
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Regexp(t, `^/games/solo/[A-Za-z0-9]{8}$`, resp.Header.Get("Location"))

	resp, body := get(t, srv.URL+"/games/versus/abcd1234")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `src="/games/assets/memesweeper/app.js"`)

	resp, _ = get(t, srv.URL+"/games/pprof/cmdline")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewPage(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/games"

	page := newPage(cfg, "<Oops>", "Try again & again")

	assert.Contains(t, page, "<title>&lt;Oops&gt;</title>")
	assert.Contains(t, page, `<a href="/games/">Try again &amp; again</a>`)
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", realIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.7")
	assert.Equal(t, "192.0.2.7:1234", realIP(r))

	r.Header.Set("CF-Connecting-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:1234", realIP(r))

	r.Header.Set("CF-Connecting-IP", "garbage")
	assert.Equal(t, "10.0.0.1:1234", realIP(r))
}
