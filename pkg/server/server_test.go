package server

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/pwa"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testAppConfig() models.Config {
	return models.Config{
		Environment: "testing",
		PWA: models.PwaConfig{
			ThemeColor: "#336699",
		},
	}
}

func get(t *testing.T, s *Server, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestManifest_EndToEnd(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig()
	cfg.PWA.ShortName = "TestAdmin"
	cfg.PWA.ThemeColor = "#FF0000"
	cfg.PWA.StartURL = "/custom-admin"

	rec := get(t, New(cfg), pwa.ManifestRoute)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get(echo.HeaderCacheControl))

	body := rec.Body.String()
	assert.Contains(t, body, `"short_name":"TestAdmin"`)
	assert.Contains(t, body, `"theme_color":"#FF0000"`)
	assert.Contains(t, body, `"start_url":"/custom-admin"`)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc["icons"], 10)
}

func TestManifest_OverridesPerRequest(t *testing.T) {
	t.Parallel()

	calls := 0
	s := New(testAppConfig(), WithOverrides(pwa.Overrides{
		Name: pwa.Computed(func() string {
			calls++
			return "Computed Admin"
		}),
	}))

	for i := 0; i < 2; i++ {
		rec := get(t, s, pwa.ManifestRoute)
		assert.Contains(t, rec.Body.String(), `"name":"Computed Admin"`)
	}
	assert.Equal(t, 2, calls, "configuration is rebuilt for every request")
}

func TestManifest_AcceptLanguage(t *testing.T) {
	t.Parallel()

	s := New(testAppConfig())

	rec := get(t, s, pwa.ManifestRoute, "Accept-Language", "ar-EG,ar;q=0.9,en;q=0.5")
	assert.Contains(t, rec.Body.String(), `"lang":"ar-EG"`)
	assert.Contains(t, rec.Body.String(), `"dir":"rtl"`)

	rec = get(t, s, pwa.ManifestRoute, "Accept-Language", "de-DE")
	assert.Contains(t, rec.Body.String(), `"dir":"ltr"`)
}

func TestServiceWorker_Rendered(t *testing.T) {
	t.Parallel()

	rec := get(t, New(testAppConfig()), pwa.ServiceWorkerRoute)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "/admin", rec.Header().Get("Service-Worker-Allowed"))
	assert.Contains(t, rec.Body.String(), "const CACHE_NAME")
	assert.Contains(t, rec.Body.String(), "// Service worker for Admin Panel")
}

func TestServiceWorker_CustomFileWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sw.js"), []byte("// custom worker\n"), 0644))

	cfg := testAppConfig()
	cfg.PublicDir = dir
	cfg.Server.Metrics = true
	s := New(cfg)

	rec := get(t, s, pwa.ServiceWorkerRoute)
	assert.Equal(t, "// custom worker\n", rec.Body.String())
	assert.Equal(t, "application/javascript", rec.Header().Get(echo.HeaderContentType))

	rec = get(t, s, MetricsRoute)
	assert.Contains(t, rec.Body.String(), `adminpwa_custom_assets_served_total{asset="sw.js"} 1`)
}

func TestBrowserConfig(t *testing.T) {
	t.Parallel()

	rec := get(t, New(testAppConfig()), pwa.BrowserConfigRoute)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get(echo.HeaderContentType))

	var doc pwa.BrowserConfig
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "#336699", doc.Tile.TileColor)
	assert.Contains(t, doc.Tile.Square150.Src, "icon-150x150.png")
}

func TestOfflinePage(t *testing.T) {
	t.Parallel()

	rec := get(t, New(testAppConfig()), OfflineRoute, "Accept-Language", "ar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, echo.MIMETextHTMLCharsetUTF8, rec.Header().Get(echo.HeaderContentType))

	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="ar" dir="rtl">`)
	assert.Contains(t, body, "أنت غير متصل")
}

func TestHeadSnippet(t *testing.T) {
	t.Parallel()

	s := New(testAppConfig(), WithDebug(true), WithOverrides(pwa.Overrides{
		Installation: pwa.Literal(models.InstallationConfig{Enabled: true, PromptDelay: 1000}),
	}))

	rec := get(t, s, HeadRoute)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rel="manifest"`)
	assert.NotContains(t, rec.Body.String(), "promptDelay", "banner hidden in debug")

	rec = get(t, s, HeadRoute+"?debug=false")
	assert.Contains(t, rec.Body.String(), "promptDelay")

	rec = get(t, s, HeadRoute+"?debug=maybe")
	assert.NotContains(t, rec.Body.String(), "promptDelay", "unparseable value keeps the server setting")

	rec = get(t, s, HeadRoute+"?debug=false", "X-Requested-With", "PWA")
	assert.Contains(t, rec.Body.String(), `rel="manifest"`)
	assert.NotContains(t, rec.Body.String(), "promptDelay", "installed app gets no banner")
}

func TestServiceWorker_PublishedFileFollowsConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	published := pwa.MarkGenerated("sw.js", []byte("const CACHE_NAME = \"cache-v1\";\n"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sw.js"), published, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "browserconfig.xml"),
		pwa.MarkGenerated("browserconfig.xml", []byte(xml.Header+"<browserconfig/>\n")), 0644))

	cfg := testAppConfig()
	cfg.PublicDir = dir
	cfg.PWA.ServiceWorker.CacheName = "cache-v2"
	s := New(cfg)

	body := get(t, s, pwa.ServiceWorkerRoute).Body.String()
	assert.Contains(t, body, `const CACHE_NAME = "cache-v2";`)
	assert.NotContains(t, body, "cache-v1")

	body = get(t, s, pwa.BrowserConfigRoute).Body.String()
	assert.Contains(t, body, "square150x150logo")
}

func TestFallbackBrowserConfig(t *testing.T) {
	t.Parallel()

	var doc pwa.BrowserConfig
	require.NoError(t, xml.Unmarshal(fallbackBrowserConfig(), &doc))
	assert.Equal(t, pwa.FallbackThemeColor, doc.Tile.TileColor)
	assert.NotEmpty(t, doc.Tile.Square150.Src)
}

func TestFavicon(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig()
	cfg.PublicDir = t.TempDir()
	s := New(cfg)
	assert.Equal(t, http.StatusNotFound, get(t, s, pwa.FaviconRoute).Code)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.PublicDir, "favicon.ico"), []byte{0, 0, 1, 0}, 0644))
	rec := get(t, s, pwa.FaviconRoute)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/x-icon", rec.Header().Get(echo.HeaderContentType))
}

func TestRouteMiddleware(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig()
	cfg.RouteMiddleware = []string{"web", "gzip", "request-id", "throttle", "GZIP"}
	s := New(cfg)

	rec := get(t, s, pwa.ManifestRoute, "Accept-Encoding", "gzip")
	assert.Equal(t, "gzip", rec.Header().Get(echo.HeaderContentEncoding))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestBuildMiddleware(t *testing.T) {
	t.Parallel()

	chain := buildMiddleware([]string{"recover", "unknown", "web", "logger", "recover", ""}, nil)
	assert.Len(t, chain, 2)
	assert.Contains(t, MiddlewareNames(), "request-id")
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	cfg := testAppConfig()
	cfg.Server.Metrics = true
	s := New(cfg)
	require.NotNil(t, s.Metrics())

	get(t, s, pwa.ManifestRoute)
	get(t, s, pwa.ManifestRoute)
	get(t, s, "/nope")

	rec := get(t, s, MetricsRoute)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `adminpwa_http_requests_total{route="/manifest.json",status="200"} 2`)
	assert.Contains(t, body, `adminpwa_http_request_duration_seconds_count{route="/manifest.json"} 2`)

	assert.Nil(t, New(testAppConfig()).Metrics())
	assert.Equal(t, http.StatusNotFound, get(t, New(testAppConfig()), MetricsRoute).Code)
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	s := New(testAppConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Start(ctx, "127.0.0.1:0"))
}
