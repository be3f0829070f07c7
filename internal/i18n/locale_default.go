//go:build !windows

package i18n

import (
	"bufio"
	"os"
	"strings"
)

// systemLocaleFiles hold the machine-wide locale on systemd and Debian hosts
var systemLocaleFiles = []string{"/etc/locale.conf", "/etc/default/locale"}

// PlatformLocales returns the machine-wide locale settings, used when the
// process environment carries none.
func PlatformLocales() []string {
	var locales []string
	for _, path := range systemLocaleFiles {
		locales = append(locales, readLocaleFile(path)...)
	}
	return locales
}

// readLocaleFile extracts LC_ALL, LC_MESSAGES and LANG from a KEY=value file
func readLocaleFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(val), `"'`)
	}

	var locales []string
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := values[key]; v != "" {
			locales = append(locales, v)
		}
	}
	return locales
}
