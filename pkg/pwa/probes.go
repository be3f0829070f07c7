package pwa

import (
	"fmt"
	"os"
	"strings"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

// ColorProbe asks the host framework for its primary color
type ColorProbe struct {
	Name string
	Fn   func() (string, error)
}

// ActivePanelColor probes the primary color of the active panel
func ActivePanelColor(panels []models.PanelConfig) ColorProbe {
	return ColorProbe{Name: "active-panel", Fn: func() (string, error) {
		for _, p := range panels {
			if p.Active && strings.TrimSpace(p.PrimaryColor) != "" {
				return p.PrimaryColor, nil
			}
		}
		return "", fmt.Errorf("no active panel with a primary color")
	}}
}

// AnyPanelColor probes the first registered panel that declares a color
func AnyPanelColor(panels []models.PanelConfig) ColorProbe {
	return ColorProbe{Name: "any-panel", Fn: func() (string, error) {
		for _, p := range panels {
			if strings.TrimSpace(p.PrimaryColor) != "" {
				return p.PrimaryColor, nil
			}
		}
		return "", fmt.Errorf("no panel declares a primary color")
	}}
}

// StaticColor probes a fixed value such as the global color config
func StaticColor(name, value string) ColorProbe {
	return ColorProbe{Name: name, Fn: func() (string, error) {
		if strings.TrimSpace(value) == "" {
			return "", fmt.Errorf("not configured")
		}
		return value, nil
	}}
}

// EnvColor probes an environment variable
func EnvColor(key string) ColorProbe {
	return ColorProbe{Name: "env:" + key, Fn: func() (string, error) {
		v := os.Getenv(key)
		if strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("%s is not set", key)
		}
		return v, nil
	}}
}

// HostColorProbes is the standard probe order for a host description
func HostColorProbes(host models.HostConfig) []ColorProbe {
	return []ColorProbe{
		ActivePanelColor(host.Panels),
		AnyPanelColor(host.Panels),
		StaticColor("global-color", host.PrimaryColor),
		EnvColor("PWA_PRIMARY_COLOR"),
	}
}

// HostLocaleProbes is the standard locale probe order; request-scoped
// probes go between the configured locale and the process environment.
func HostLocaleProbes(host models.HostConfig, extra ...LocaleProbe) []LocaleProbe {
	probes := []LocaleProbe{StaticLocale("host-locale", host.Locale)}
	probes = append(probes, extra...)
	return append(probes, EnvLocale(), PlatformLocale())
}

// DetectColor runs probes in order and returns the first that yields a
// parseable color. Errors and panics count as misses.
func DetectColor(probes []ColorProbe, logger utils.Logger) (string, bool) {
	for _, probe := range probes {
		raw, err := safeProbe(probe.Fn)
		if err != nil {
			logger.Debug("Color probe %s missed: %v", probe.Name, err)
			continue
		}
		hex, err := NormalizeColor(raw)
		if err != nil {
			logger.Debug("Color probe %s returned unparseable value: %v", probe.Name, err)
			continue
		}
		logger.Debug("Theme color %s detected by %s", hex, probe.Name)
		return hex, true
	}
	return "", false
}

// DetectLanguage runs locale probes and returns the first valid language tag
func DetectLanguage(probes []LocaleProbe, logger utils.Logger) (string, bool) {
	for _, probe := range probes {
		raw, err := safeProbe(probe.Fn)
		if err != nil {
			logger.Debug("Locale probe %s missed: %v", probe.Name, err)
			continue
		}
		lang, err := NormalizeLanguage(raw)
		if err != nil {
			logger.Debug("Locale probe %s returned unparseable value: %v", probe.Name, err)
			continue
		}
		return lang, true
	}
	return "", false
}

func safeProbe(fn func() (string, error)) (value string, err error) {
	if fn == nil {
		return "", fmt.Errorf("nil probe")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return fn()
}
