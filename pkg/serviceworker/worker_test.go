package serviceworker

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanfeng/adminpwa/pkg/models"
)

// fakeNetwork serves fixed bodies and can be switched offline
type fakeNetwork struct {
	mu      sync.Mutex
	offline bool
	bodies  map[string]string
	calls   []string
}

func (n *fakeNetwork) Fetch(_ context.Context, req Request) (*Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.calls = append(n.calls, req.URL)
	if n.offline {
		return nil, errors.New("network unreachable")
	}
	body, ok := n.bodies[req.URL]
	if !ok {
		return &Response{Status: http.StatusNotFound}, nil
	}
	return &Response{Status: http.StatusOK, Body: []byte(body)}, nil
}

func (n *fakeNetwork) setOffline(v bool) {
	n.mu.Lock()
	n.offline = v
	n.mu.Unlock()
}

func testConfig() models.ServiceWorkerConfig {
	return models.ServiceWorkerConfig{
		CacheName:    "admin-pwa-v2",
		OfflineURL:   "/offline",
		PrecacheURLs: []string{"/admin", "/admin/login", "/offline"},
		CachePatterns: []models.CachePattern{
			{Name: "assets", Pattern: `/\/(css|js|build|vendor)\//`},
			{Name: "images", Pattern: `\.(png|jpg|jpeg|svg|gif|webp|ico)$`},
			{Name: "fonts", Pattern: `\.(woff|woff2|ttf|eot)$`},
		},
	}
}

func newTestWorker(t *testing.T) (*Worker, *fakeNetwork) {
	t.Helper()
	net := &fakeNetwork{bodies: map[string]string{
		"/admin":           "dashboard",
		"/admin/login":     "login",
		"/offline":         "offline page",
		"/admin/users":     "users",
		"/css/app.css":     "body{}",
		"/img/logo.png":    "png",
		"/fonts/inter.ttf": "ttf",
	}}
	w := NewWorker(testConfig(), net, WorkerOptions{Origin: "https://admin.example.com", Scope: "/admin"})
	return w, net
}

func TestWorker_PrecachedServedWhenNetworkFails(t *testing.T) {
	t.Parallel()

	w, net := newTestWorker(t)
	require.NoError(t, w.Install(context.Background()))

	net.setOffline(true)
	resp, err := w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/admin/login"})
	require.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, "login", string(resp.Body))

	resp, err = w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "https://admin.example.com/admin"})
	require.NoError(t, err)
	assert.Equal(t, "dashboard", string(resp.Body))
}

func TestWorker_NetworkFirstUpdatesCache(t *testing.T) {
	t.Parallel()

	w, net := newTestWorker(t)

	resp, err := w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/admin/users"})
	require.NoError(t, err)
	assert.False(t, resp.FromCache)

	net.bodies["/admin/users"] = "users v2"
	resp, err = w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/admin/users"})
	require.NoError(t, err)
	assert.Equal(t, "users v2", string(resp.Body), "network wins while online")

	net.setOffline(true)
	resp, err = w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/admin/users"})
	require.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, "users v2", string(resp.Body), "latest network response overwrote the entry")
}

func TestWorker_OfflineFallback(t *testing.T) {
	t.Parallel()

	w, net := newTestWorker(t)
	net.setOffline(true)

	resp, err := w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/admin/reports"})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body), "You're Offline", "built-in document before install")

	net.setOffline(false)
	require.NoError(t, w.Install(context.Background()))
	net.setOffline(true)

	resp, err = w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/admin/reports"})
	require.NoError(t, err)
	assert.Equal(t, "offline page", string(resp.Body), "precached offline URL preferred")
}

func TestWorker_CacheFirst(t *testing.T) {
	t.Parallel()

	w, net := newTestWorker(t)

	resp, err := w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/css/app.css"})
	require.NoError(t, err)
	assert.False(t, resp.FromCache)

	net.bodies["/css/app.css"] = "changed"
	resp, err = w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/css/app.css"})
	require.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, "body{}", string(resp.Body))

	net.setOffline(true)
	_, err = w.Fetch(context.Background(), Request{Method: http.MethodGet, URL: "/fonts/missing.woff2"})
	assert.Error(t, err, "miss plus network failure propagates")
}

func TestWorker_Classify(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorker(t)
	tests := []struct {
		req   Request
		want  Strategy
		class string
	}{
		{Request{Method: "GET", URL: "/admin"}, NetworkFirst, ""},
		{Request{Method: "GET", URL: "/admin/users?page=2"}, NetworkFirst, ""},
		{Request{Method: "GET", URL: "/administrator"}, Passthrough, ""},
		{Request{Method: "POST", URL: "/admin/users"}, Passthrough, ""},
		{Request{Method: "GET", URL: "https://cdn.example.net/css/app.css"}, Passthrough, ""},
		{Request{Method: "GET", URL: "/build/app.js"}, CacheFirst, "assets"},
		{Request{Method: "GET", URL: "/img/logo.PNG"}, Passthrough, ""},
		{Request{Method: "GET", URL: "/img/logo.webp"}, CacheFirst, "images"},
		{Request{Method: "GET", URL: "/fonts/inter.woff2"}, CacheFirst, "fonts"},
		{Request{Method: "GET", URL: "/api/health"}, Passthrough, ""},
	}

	for _, tt := range tests {
		got, class := w.Classify(tt.req)
		assert.Equal(t, tt.want, got, "%s %s", tt.req.Method, tt.req.URL)
		assert.Equal(t, tt.class, class, "%s %s", tt.req.Method, tt.req.URL)
	}

	_, err := w.Fetch(context.Background(), Request{Method: "POST", URL: "/admin/users"})
	assert.ErrorIs(t, err, ErrNotIntercepted)
}

func TestWorker_ActivateDeletesOnlyStaleCaches(t *testing.T) {
	t.Parallel()

	w, _ := newTestWorker(t)
	require.NoError(t, w.Install(context.Background()))

	storage := w.Storage()
	storage.Open("admin-pwa-v1").Put("/admin", &Response{Status: 200, Body: []byte("old")})
	storage.Open("admin-pwa-v0").Put("/admin", &Response{Status: 200, Body: []byte("older")})
	storage.Open("other")

	deleted := w.Activate()
	assert.ElementsMatch(t, []string{"admin-pwa-v1", "admin-pwa-v0", "other"}, deleted)
	assert.Equal(t, []string{"admin-pwa-v2"}, storage.Keys())
	assert.Equal(t, 3, storage.Open("admin-pwa-v2").Len())

	assert.Empty(t, w.Activate(), "second activation is a no-op")
}

func TestWorker_InstallIsAllOrNothing(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.PrecacheURLs = append(cfg.PrecacheURLs, "/admin/missing")
	net := &fakeNetwork{bodies: map[string]string{"/admin": "a", "/admin/login": "b", "/offline": "c"}}
	w := NewWorker(cfg, net, WorkerOptions{Scope: "/admin"})

	err := w.Install(context.Background())
	require.Error(t, err)
	assert.False(t, w.Storage().Has(cfg.CacheName))
}
