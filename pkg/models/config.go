package models

// Config represents the application configuration
type Config struct {
	Environment     string       `mapstructure:"environment" json:"environment" yaml:"environment"`
	PublicDir       string       `mapstructure:"public_dir" json:"public_dir" yaml:"public_dir"`
	BaseURL         string       `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	RouteMiddleware []string     `mapstructure:"route_middleware" json:"route_middleware" yaml:"route_middleware"`
	Server          ServerConfig `mapstructure:"server" json:"server" yaml:"server"`
	Host            HostConfig   `mapstructure:"host" json:"host" yaml:"host"`
	PWA             PwaConfig    `mapstructure:"pwa" json:"pwa" yaml:"pwa"`
}

// ServerConfig contains settings for the serve command
type ServerConfig struct {
	Addr    string `mapstructure:"addr" json:"addr" yaml:"addr"`
	Metrics bool   `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
}

// HostConfig describes what the surrounding admin framework exposes to the
// resolver: its panels, a global primary color and a locale.
type HostConfig struct {
	Locale       string        `mapstructure:"locale" json:"locale" yaml:"locale"`
	PrimaryColor string        `mapstructure:"primary_color" json:"primary_color" yaml:"primary_color"`
	Panels       []PanelConfig `mapstructure:"panels" json:"panels" yaml:"panels"`
}

// PanelConfig is one registered admin panel
type PanelConfig struct {
	ID           string `mapstructure:"id" json:"id" yaml:"id"`
	Active       bool   `mapstructure:"active" json:"active" yaml:"active"`
	PrimaryColor string `mapstructure:"primary_color" json:"primary_color" yaml:"primary_color"`
}

// PwaConfig is the canonical, fully resolved PWA configuration
type PwaConfig struct {
	Name                      string               `mapstructure:"name" json:"name" yaml:"name"`
	ShortName                 string               `mapstructure:"short_name" json:"short_name" yaml:"short_name"`
	Description               string               `mapstructure:"description" json:"description" yaml:"description"`
	StartURL                  string               `mapstructure:"start_url" json:"start_url" yaml:"start_url"`
	Display                   string               `mapstructure:"display" json:"display" yaml:"display"`             // standalone, fullscreen, minimal-ui, browser
	Orientation               string               `mapstructure:"orientation" json:"orientation" yaml:"orientation"` // portrait-primary, landscape, any, ...
	Scope                     string               `mapstructure:"scope" json:"scope" yaml:"scope"`
	BackgroundColor           string               `mapstructure:"background_color" json:"background_color" yaml:"background_color"`
	ThemeColor                string               `mapstructure:"theme_color" json:"theme_color" yaml:"theme_color"`
	Lang                      string               `mapstructure:"lang" json:"lang" yaml:"lang"`
	Dir                       string               `mapstructure:"dir" json:"dir" yaml:"dir"` // ltr, rtl
	Categories                []string             `mapstructure:"categories" json:"categories" yaml:"categories"`
	Installation              InstallationConfig   `mapstructure:"installation" json:"installation" yaml:"installation"`
	Icons                     IconConfig           `mapstructure:"icons" json:"icons" yaml:"icons"`
	Shortcuts                 []Shortcut           `mapstructure:"shortcuts" json:"shortcuts" yaml:"shortcuts"`
	Screenshots               []Screenshot         `mapstructure:"screenshots" json:"screenshots" yaml:"screenshots"`
	RelatedApplications       []RelatedApplication `mapstructure:"related_applications" json:"related_applications" yaml:"related_applications"`
	PreferRelatedApplications bool                 `mapstructure:"prefer_related_applications" json:"prefer_related_applications" yaml:"prefer_related_applications"`
	ServiceWorker             ServiceWorkerConfig  `mapstructure:"service_worker" json:"service_worker" yaml:"service_worker"`

	// Explicit lists the keys, relative to pwa (e.g. "installation.enabled"),
	// that the loader found in the file or environment. An explicit false or
	// 0 on such a key overrides the default.
	Explicit map[string]bool `mapstructure:"-" json:"-" yaml:"-"`
}

// IsExplicit reports whether key was set by the file or environment
func (c PwaConfig) IsExplicit(key string) bool {
	return c.Explicit[key]
}

// InstallationConfig controls the install prompt
type InstallationConfig struct {
	Enabled              bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	PromptDelay          int  `mapstructure:"prompt_delay" json:"prompt_delay" yaml:"prompt_delay"`                               // milliseconds
	IOSInstructionsDelay int  `mapstructure:"ios_instructions_delay" json:"ios_instructions_delay" yaml:"ios_instructions_delay"` // milliseconds
	ShowBannerInDebug    bool `mapstructure:"show_banner_in_debug" json:"show_banner_in_debug" yaml:"show_banner_in_debug"`
}

// IconConfig contains icon generation settings
type IconConfig struct {
	SourcePath      string `mapstructure:"source_path" json:"source_path" yaml:"source_path"`
	OutputPath      string `mapstructure:"output_path" json:"output_path" yaml:"output_path"`
	Sizes           []int  `mapstructure:"sizes" json:"sizes" yaml:"sizes"`
	MaskableSizes   []int  `mapstructure:"maskable_sizes" json:"maskable_sizes" yaml:"maskable_sizes"`
	AdditionalSizes []int  `mapstructure:"additional_sizes" json:"additional_sizes" yaml:"additional_sizes"` // favicons and tiles, not listed in the manifest
	Backend         string `mapstructure:"backend" json:"backend" yaml:"backend"`                            // auto, vector, raster, minimal
}

// Shortcut is an app menu entry
type Shortcut struct {
	Name        string    `mapstructure:"name" json:"name" yaml:"name"`
	ShortName   string    `mapstructure:"short_name" json:"short_name" yaml:"short_name"`
	Description string    `mapstructure:"description" json:"description" yaml:"description"`
	URL         string    `mapstructure:"url" json:"url" yaml:"url"`
	Icons       []IconRef `mapstructure:"icons" json:"icons" yaml:"icons"`
}

// IconRef references an icon file from a shortcut
type IconRef struct {
	Src   string `mapstructure:"src" json:"src" yaml:"src"`
	Sizes string `mapstructure:"sizes" json:"sizes" yaml:"sizes"`
	Type  string `mapstructure:"type" json:"type,omitempty" yaml:"type,omitempty"`
}

// Screenshot is shown in richer install dialogs
type Screenshot struct {
	Src        string `mapstructure:"src" json:"src" yaml:"src"`
	Sizes      string `mapstructure:"sizes" json:"sizes" yaml:"sizes"`
	Type       string `mapstructure:"type" json:"type,omitempty" yaml:"type,omitempty"`
	FormFactor string `mapstructure:"form_factor" json:"form_factor,omitempty" yaml:"form_factor,omitempty"` // wide, narrow
	Label      string `mapstructure:"label" json:"label,omitempty" yaml:"label,omitempty"`
}

// RelatedApplication points to a native app
type RelatedApplication struct {
	Platform string `mapstructure:"platform" json:"platform" yaml:"platform"`
	URL      string `mapstructure:"url" json:"url,omitempty" yaml:"url,omitempty"`
	ID       string `mapstructure:"id" json:"id,omitempty" yaml:"id,omitempty"`
}

// ServiceWorkerConfig drives the generated service worker
type ServiceWorkerConfig struct {
	CacheName     string         `mapstructure:"cache_name" json:"cache_name" yaml:"cache_name"` // change to invalidate old caches
	OfflineURL    string         `mapstructure:"offline_url" json:"offline_url" yaml:"offline_url"`
	PrecacheURLs  []string       `mapstructure:"cache_urls" json:"cache_urls" yaml:"cache_urls"`
	CachePatterns []CachePattern `mapstructure:"cache_patterns" json:"cache_patterns" yaml:"cache_patterns"`
}

// CachePattern maps an asset class to a path regex
type CachePattern struct {
	Name    string `mapstructure:"name" json:"name" yaml:"name"`
	Pattern string `mapstructure:"pattern" json:"pattern" yaml:"pattern"`
}
