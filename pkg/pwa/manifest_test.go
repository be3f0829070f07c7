package pwa

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanfeng/adminpwa/pkg/models"
)

func TestBuildManifest_Icons(t *testing.T) {
	t.Parallel()

	cfg := NewResolver(models.PwaConfig{}).Resolve(Overrides{})
	m := BuildManifest(cfg)

	require.Len(t, m.Icons, len(cfg.Icons.Sizes)+len(cfg.Icons.MaskableSizes))
	for i, icon := range m.Icons {
		var n int
		_, err := fmt.Sscanf(icon.Sizes, "%dx%d", &n, &n)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%dx%d", n, n), icon.Sizes)
		assert.Equal(t, "image/png", icon.Type)

		if i < len(cfg.Icons.Sizes) {
			assert.Equal(t, PurposeAny, icon.Purpose)
			assert.Equal(t, fmt.Sprintf("/images/icons/icon-%dx%d.png", n, n), icon.Src)
		} else {
			assert.Equal(t, PurposeMaskable, icon.Purpose)
			assert.Equal(t, fmt.Sprintf("/images/icons/icon-%dx%d-maskable.png", n, n), icon.Src)
		}
	}
	assert.Equal(t, "72x72", m.Icons[0].Sizes)
	assert.Equal(t, "512x512", m.Icons[7].Sizes)
	assert.Equal(t, "192x192", m.Icons[8].Sizes)
}

func TestExpandIconSpecs_Ordering(t *testing.T) {
	t.Parallel()

	specs := ExpandIconSpecs([]int{512, 72, 192, 72, 0}, []int{512, 192})
	want := []IconSpec{
		{72, PurposeAny}, {192, PurposeAny}, {512, PurposeAny},
		{192, PurposeMaskable}, {512, PurposeMaskable},
	}
	assert.Equal(t, want, specs)
	assert.Equal(t, "icon-192x192-maskable.png", specs[3].FileName())
}

func TestBuildManifest_WireNames(t *testing.T) {
	t.Parallel()

	cfg := NewResolver(models.PwaConfig{}).Resolve(Overrides{
		ShortName:  Literal("TestAdmin"),
		ThemeColor: Literal("#FF0000"),
		StartURL:   Literal("/custom-admin"),
	})
	body, err := json.Marshal(BuildManifest(cfg))
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, `"short_name":"TestAdmin"`)
	assert.Contains(t, s, `"theme_color":"#FF0000"`)
	assert.Contains(t, s, `"start_url":"/custom-admin"`)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	for _, key := range []string{
		"name", "short_name", "description", "start_url", "display", "background_color",
		"theme_color", "orientation", "scope", "lang", "dir", "categories", "icons",
		"shortcuts", "screenshots", "related_applications", "prefer_related_applications",
	} {
		assert.Contains(t, raw, key)
	}
	assert.NotNil(t, raw["screenshots"], "empty lists serialize as []")
}

func TestBuildManifest_ZeroConfig(t *testing.T) {
	t.Parallel()

	m := BuildManifest(models.PwaConfig{})
	assert.Empty(t, m.Icons)
	assert.NotNil(t, m.Categories)

	body, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"icons":[]`)
}

func TestBuildBrowserConfig(t *testing.T) {
	t.Parallel()

	cfg := NewResolver(models.PwaConfig{ThemeColor: "#336699"}).Resolve(Overrides{})
	body, err := MarshalBrowserConfig(cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "<?xml"))

	var doc BrowserConfig
	require.NoError(t, xml.Unmarshal(body, &doc))
	assert.Equal(t, "#336699", doc.Tile.TileColor)
	assert.Equal(t, "/images/icons/icon-70x70.png", doc.Tile.Square70.Src)
	assert.Equal(t, "/images/icons/icon-150x150.png", doc.Tile.Square150.Src)
	assert.Equal(t, "/images/icons/icon-310x310.png", doc.Tile.Square310.Src)
}

func TestIsPWARequest(t *testing.T) {
	t.Parallel()

	plain := httptest.NewRequest(http.MethodGet, "/admin", http.NoBody)
	assert.False(t, IsPWARequest(plain))
	assert.False(t, IsPWARequest(nil))

	header := httptest.NewRequest(http.MethodGet, "/admin", http.NoBody)
	header.Header.Set("X-Requested-With", "PWA")
	assert.True(t, IsPWARequest(header))

	assert.True(t, IsPWARequest(httptest.NewRequest(http.MethodGet, "/admin?pwa=1", http.NoBody)))

	ua := httptest.NewRequest(http.MethodGet, "/admin", http.NoBody)
	ua.Header.Set("User-Agent", "Mozilla/5.0 PWA Shell")
	assert.True(t, IsPWARequest(ua))
}
