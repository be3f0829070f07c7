package pwa

import "github.com/huanfeng/adminpwa/pkg/models"

// Enumerated value sets
var (
	DisplayModes = []string{"standalone", "fullscreen", "minimal-ui", "browser"}
	Orientations = []string{
		"any", "natural", "landscape", "landscape-primary", "landscape-secondary",
		"portrait", "portrait-primary", "portrait-secondary",
	}
)

// Default icon sizes
var (
	DefaultIconSizes       = []int{72, 96, 128, 144, 152, 192, 384, 512}
	DefaultMaskableSizes   = []int{192, 512}
	DefaultAdditionalSizes = []int{16, 32, 70, 150, 310}
)

// Defaults returns the built-in configuration. ThemeColor and Lang are left
// empty so that the resolver detects them from the host.
func Defaults() models.PwaConfig {
	return models.PwaConfig{
		Name:            "Admin Panel",
		ShortName:       "Admin",
		Description:     "Admin panel",
		StartURL:        "/admin",
		Display:         "standalone",
		Orientation:     "portrait-primary",
		Scope:           "/admin",
		BackgroundColor: FallbackBackgroundColor,
		Categories:      []string{"productivity", "business", "utilities"},
		Installation: models.InstallationConfig{
			Enabled:              true,
			PromptDelay:          2000,
			IOSInstructionsDelay: 5000,
			ShowBannerInDebug:    true,
		},
		Icons: models.IconConfig{
			SourcePath:      "icon.svg",
			OutputPath:      "images/icons",
			Sizes:           append([]int(nil), DefaultIconSizes...),
			MaskableSizes:   append([]int(nil), DefaultMaskableSizes...),
			AdditionalSizes: append([]int(nil), DefaultAdditionalSizes...),
			Backend:         "auto",
		},
		Shortcuts: []models.Shortcut{
			{
				Name:        "Dashboard",
				ShortName:   "Dashboard",
				Description: "Go to the main dashboard",
				URL:         "/admin",
				Icons:       []models.IconRef{{Src: "/images/icons/icon-96x96.png", Sizes: "96x96"}},
			},
		},
		Screenshots:         []models.Screenshot{},
		RelatedApplications: []models.RelatedApplication{},
		ServiceWorker:       DefaultServiceWorker(),
	}
}

// DefaultServiceWorker returns the default caching configuration
func DefaultServiceWorker() models.ServiceWorkerConfig {
	return models.ServiceWorkerConfig{
		CacheName:    "admin-pwa-v1.0.0",
		OfflineURL:   "/offline",
		PrecacheURLs: []string{"/admin", "/admin/login", "/manifest.json"},
		CachePatterns: []models.CachePattern{
			{Name: "assets", Pattern: `\/(css|js|build|vendor)\/`},
			{Name: "images", Pattern: `\.(png|jpg|jpeg|svg|gif|webp|ico)$`},
			{Name: "fonts", Pattern: `\.(woff|woff2|ttf|eot)$`},
		},
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
