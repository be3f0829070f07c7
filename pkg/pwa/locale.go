package pwa

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/huanfeng/adminpwa/internal/i18n"
)

// DefaultLanguage is used when no locale can be detected
const DefaultLanguage = "en"

// Text directions
const (
	DirLTR = "ltr"
	DirRTL = "rtl"
)

var rtlLanguages = map[string]bool{
	"ar": true, "he": true, "fa": true, "ur": true, "ku": true,
	"dv": true, "ps": true, "sd": true, "yi": true,
}

// NormalizeLanguage turns locale strings such as "zh_CN.UTF-8" into BCP 47 tags ("zh-CN")
func NormalizeLanguage(s string) (string, error) {
	clean := strings.TrimSpace(s)
	if idx := strings.IndexAny(clean, ".@"); idx >= 0 {
		clean = clean[:idx]
	}
	clean = strings.ReplaceAll(clean, "_", "-")
	if clean == "" || strings.EqualFold(clean, "C") || strings.EqualFold(clean, "POSIX") {
		return "", fmt.Errorf("no language in %q", s)
	}

	tag, err := language.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", s, err)
	}
	return tag.String(), nil
}

// BaseLanguage returns the lower-case primary subtag ("pt-BR" -> "pt")
func BaseLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}

// Direction returns "rtl" for right-to-left languages and "ltr" otherwise
func Direction(lang string) string {
	if rtlLanguages[BaseLanguage(lang)] {
		return DirRTL
	}
	return DirLTR
}

// LocaleProbe yields a host locale or an error when it has none
type LocaleProbe struct {
	Name string
	Fn   func() (string, error)
}

// StaticLocale probes a fixed, configured locale
func StaticLocale(name, locale string) LocaleProbe {
	return LocaleProbe{Name: name, Fn: func() (string, error) {
		if strings.TrimSpace(locale) == "" {
			return "", fmt.Errorf("not configured")
		}
		return locale, nil
	}}
}

// AcceptLanguageLocale probes an HTTP Accept-Language header value
func AcceptLanguageLocale(header string) LocaleProbe {
	return LocaleProbe{Name: "accept-language", Fn: func() (string, error) {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err != nil {
			return "", err
		}
		if len(tags) == 0 {
			return "", fmt.Errorf("empty header")
		}
		return tags[0].String(), nil
	}}
}

// EnvLocale probes LC_ALL, LC_MESSAGES and LANG in that order
func EnvLocale() LocaleProbe {
	return LocaleProbe{Name: "environment", Fn: func() (string, error) {
		for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
			if val := strings.TrimSpace(os.Getenv(key)); val != "" {
				if _, err := NormalizeLanguage(val); err == nil {
					return val, nil
				}
			}
		}
		return "", fmt.Errorf("no locale variables set")
	}}
}

// PlatformLocale probes the operating system's configured languages
func PlatformLocale() LocaleProbe {
	return LocaleProbe{Name: "platform", Fn: func() (string, error) {
		for _, val := range i18n.PlatformLocales() {
			if _, err := NormalizeLanguage(val); err == nil {
				return val, nil
			}
		}
		return "", fmt.Errorf("no platform locale")
	}}
}
