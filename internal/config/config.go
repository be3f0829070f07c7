package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/huanfeng/adminpwa/pkg/models"
)

// FileName is the configuration file name without extension
const FileName = "pwa"

// EnvPrefix prefixes every environment variable
const EnvPrefix = "PWA"

var defaultConfig = models.Config{
	Environment:     "production",
	PublicDir:       "public",
	BaseURL:         "",
	RouteMiddleware: []string{"web"},
	Server: models.ServerConfig{
		Addr:    ":8080",
		Metrics: false,
	},
}

// envKeys are the configuration keys that can be set from the environment.
// pwa.* keys drop their prefix: pwa.short_name is PWA_SHORT_NAME.
var envKeys = []string{
	"environment",
	"public_dir",
	"base_url",
	"route_middleware",
	"server.addr",
	"server.metrics",
	"host.locale",
	"host.primary_color",
	"pwa.name",
	"pwa.short_name",
	"pwa.description",
	"pwa.start_url",
	"pwa.display",
	"pwa.orientation",
	"pwa.scope",
	"pwa.background_color",
	"pwa.theme_color",
	"pwa.lang",
	"pwa.dir",
	"pwa.categories",
	"pwa.installation.enabled",
	"pwa.installation.prompt_delay",
	"pwa.installation.ios_instructions_delay",
	"pwa.installation.show_banner_in_debug",
	"pwa.icons.source_path",
	"pwa.icons.output_path",
	"pwa.icons.sizes",
	"pwa.icons.maskable_sizes",
	"pwa.icons.additional_sizes",
	"pwa.icons.backend",
	"pwa.prefer_related_applications",
	"pwa.service_worker.cache_name",
	"pwa.service_worker.offline_url",
	"pwa.service_worker.cache_urls",
}

// EnvName returns the environment variable bound to a configuration key
func EnvName(key string) string {
	key = strings.TrimPrefix(key, "pwa.")
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load loads configuration from file and environment. PWA fields left
// unset stay zero so the resolver can apply its own defaults.
func Load(configPath string) (*models.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("environment", defaultConfig.Environment)
	v.SetDefault("public_dir", defaultConfig.PublicDir)
	v.SetDefault("base_url", defaultConfig.BaseURL)
	v.SetDefault("route_middleware", defaultConfig.RouteMiddleware)
	v.SetDefault("server.addr", defaultConfig.Server.Addr)
	v.SetDefault("server.metrics", defaultConfig.Server.Metrics)

	// Try to load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")

		// Also check in user's home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "adminpwa"))
		}
	}

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error, we'll use defaults
	}

	// Bind environment variables
	for _, key := range envKeys {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.PWA.Explicit = explicitKeys(v)

	return &config, nil
}

// explicitKeys collects the pwa.* keys set by the file or environment
func explicitKeys(v *viper.Viper) map[string]bool {
	set := make(map[string]bool)
	for _, key := range envKeys {
		rel, ok := strings.CutPrefix(key, "pwa.")
		if ok && v.IsSet(key) {
			set[rel] = true
		}
	}
	return set
}

// UsedFile returns the path of the configuration file Load would read, or
// an empty string when none exists.
func UsedFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "adminpwa"))
	}
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, FileName+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

const templateHeader = `# Admin PWA configuration
#
# Every pwa.* value can also be set from the environment with the PWA_
# prefix, e.g. PWA_SHORT_NAME or PWA_SERVICE_WORKER_CACHE_NAME.
# Leave theme_color and lang empty to detect them from the host.

`

// SaveTemplate writes cfg as a commented YAML configuration file
func SaveTemplate(path string, cfg models.Config) error {
	var buf bytes.Buffer
	buf.WriteString(templateHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// DefaultTemplate is the configuration written by setup --publish-assets
func DefaultTemplate(pwaDefaults models.PwaConfig) models.Config {
	cfg := defaultConfig
	cfg.RouteMiddleware = append([]string(nil), defaultConfig.RouteMiddleware...)
	cfg.PWA = pwaDefaults
	return cfg
}
