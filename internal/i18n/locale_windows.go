//go:build windows

package i18n

import "golang.org/x/sys/windows"

// PlatformLocales returns the preferred UI languages of the user, then of
// the system, then the default locale name.
func PlatformLocales() []string {
	var locales []string

	if langs, err := windows.GetUserPreferredUILanguages(windows.MUI_LANGUAGE_NAME); err == nil {
		locales = appendNonEmpty(locales, langs)
	}
	if langs, err := windows.GetSystemPreferredUILanguages(windows.MUI_LANGUAGE_NAME); err == nil {
		locales = appendNonEmpty(locales, langs)
	}
	if len(locales) == 0 {
		if name, err := windows.GetUserDefaultLocaleName(); err == nil && name != "" {
			locales = append(locales, name)
		}
	}

	return locales
}

func appendNonEmpty(dst, src []string) []string {
	for _, s := range src {
		if s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}
