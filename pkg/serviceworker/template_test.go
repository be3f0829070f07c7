package serviceworker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

func TestRender(t *testing.T) {
	t.Parallel()

	script, err := Render(testConfig(), Options{
		AppName:     "Ops Console",
		Scope:       "/admin/",
		IconPath:    "static/icons",
		OfflineHTML: "<html><body>offline</body></html>",
	})
	require.NoError(t, err)

	assert.Contains(t, script, "// Service worker for Ops Console")
	assert.Contains(t, script, `const CACHE_NAME = "admin-pwa-v2";`)
	assert.Contains(t, script, `const OFFLINE_URL = "/offline";`)
	assert.Contains(t, script, `const APP_SCOPE = "/admin";`)
	assert.Contains(t, script, `const STATIC_CACHE_URLS = ["/admin","/admin/login","/offline"];`)
	assert.Contains(t, script, `"assets": new RegExp("\\/(css|js|build|vendor)\\/", ""),`)
	assert.Contains(t, script, `"images": new RegExp("\\.(png|jpg|jpeg|svg|gif|webp|ico)$", ""),`)
	assert.Contains(t, script, `const CACHE_FIRST = ["assets","images","fonts"]`)
	assert.Contains(t, script, `"/static/icons/icon-192x192.png"`)
	assert.Contains(t, script, `"\u003chtml\u003e\u003cbody\u003eoffline`, "offline document is JSON escaped")
	assert.Contains(t, script, "cacheName !== CACHE_NAME")
	assert.Contains(t, script, "request.method !== 'GET'")
	assert.Contains(t, script, "url.origin !== self.location.origin")
}

func TestRender_EmptyConfig(t *testing.T) {
	t.Parallel()

	script, err := Render(models.ServiceWorkerConfig{CacheName: "c"}, Options{})
	require.NoError(t, err)
	assert.Contains(t, script, `const STATIC_CACHE_URLS = [];`)
	assert.Contains(t, script, `const APP_SCOPE = "/";`)
	assert.Contains(t, script, "You're Offline")
}

func TestCompilePatterns(t *testing.T) {
	t.Parallel()

	patterns := CompilePatterns([]models.CachePattern{
		{Name: "filament_assets", Pattern: `/\/(css|js)\//`},
		{Name: "images", Pattern: `/\.(png|svg)$/gi`},
		{Name: "broken", Pattern: `(?<=x)y`},
		{Name: "", Pattern: `.*`},
		{Name: "empty", Pattern: "  "},
		{Name: "fonts", Pattern: `\.woff$`},
		{Name: "fonts", Pattern: `\.woff2?$`},
	}, utils.NewNopLogger())

	require.Len(t, patterns, 3)

	assert.Equal(t, ClassAssets, patterns[0].Name)
	assert.Equal(t, `\/(css|js)\/`, patterns[0].Source)
	assert.True(t, patterns[0].Regexp.MatchString("/js/app.js"))

	assert.Equal(t, "i", patterns[1].Flags)
	assert.True(t, patterns[1].Regexp.MatchString("/LOGO.PNG"))

	assert.Equal(t, `\.woff2?$`, patterns[2].Source, "later duplicate wins")
	assert.True(t, patterns[2].Regexp.MatchString("/f.woff2"))
}

func TestRender_SkipsInvalidPatterns(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CachePatterns = append(cfg.CachePatterns, models.CachePattern{Name: "bad", Pattern: `[unclosed`})
	script, err := Render(cfg, Options{})
	require.NoError(t, err)
	assert.False(t, strings.Contains(script, "unclosed"))
}
