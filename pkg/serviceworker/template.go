// Package serviceworker renders the caching service worker script and models
// its request strategies in Go.
package serviceworker

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var scriptTemplate = template.Must(template.ParseFS(templateFS, "templates/sw.js.tmpl"))

// Asset classes routed cache-first, in match order
const (
	ClassAssets = "assets"
	ClassImages = "images"
	ClassFonts  = "fonts"
)

// CacheFirstClasses lists the pattern names that select the cache-first strategy
var CacheFirstClasses = []string{ClassAssets, ClassImages, ClassFonts}

var classAliases = map[string]string{
	"filament_assets": ClassAssets,
}

var jsFlags = regexp.MustCompile(`^[dgimsuy]*$`)

// Pattern is a compiled cache pattern usable both in Go and in the script
type Pattern struct {
	Name   string
	Source string // regex body without delimiters
	Flags  string // JavaScript flags
	Regexp *regexp.Regexp
}

// CompilePatterns accepts "/body/flags" or bare regex bodies. Patterns that
// do not compile are skipped with a warning; later duplicates of a name win.
func CompilePatterns(patterns []models.CachePattern, logger utils.Logger) []Pattern {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	out := make([]Pattern, 0, len(patterns))
	index := make(map[string]int, len(patterns))
	for _, cp := range patterns {
		name := strings.TrimSpace(cp.Name)
		if alias, ok := classAliases[name]; ok {
			name = alias
		}
		if name == "" {
			logger.Warn("Cache pattern %q has no name, skipping", cp.Pattern)
			continue
		}

		body, flags := splitDelimited(strings.TrimSpace(cp.Pattern))
		if body == "" {
			logger.Warn("Cache pattern %s is empty, skipping", name)
			continue
		}

		goExpr := body
		if goFlags := strings.Map(func(r rune) rune {
			if strings.ContainsRune("ims", r) {
				return r
			}
			return -1
		}, flags); goFlags != "" {
			goExpr = "(?" + goFlags + ")" + goExpr
		}
		re, err := regexp.Compile(goExpr)
		if err != nil {
			logger.Warn("Cache pattern %s does not compile, skipping: %v", name, err)
			continue
		}

		p := Pattern{Name: name, Source: body, Flags: flags, Regexp: re}
		if i, ok := index[name]; ok {
			out[i] = p
			continue
		}
		index[name] = len(out)
		out = append(out, p)
	}
	return out
}

// splitDelimited strips /.../flags delimiters if present
func splitDelimited(s string) (body, flags string) {
	if len(s) >= 2 && s[0] == '/' {
		if end := strings.LastIndex(s, "/"); end > 0 && jsFlags.MatchString(s[end+1:]) {
			// stateful flags break RegExp.test across calls
			return s[1:end], strings.Map(func(r rune) rune {
				if r == 'g' || r == 'y' || r == 'd' {
					return -1
				}
				return r
			}, s[end+1:])
		}
	}
	return s, ""
}

// Options carries the context the script needs beyond the cache config
type Options struct {
	AppName     string
	Scope       string
	IconPath    string // icon output path, used for notification icons
	OfflineHTML string // precompiled fallback document
	Logger      utils.Logger
}

type scriptData struct {
	Title            string
	AppName          string
	CacheName        string
	OfflineURL       string
	Scope            string
	PrecacheURLs     string
	CacheFirst       string
	OfflineHTML      string
	NotificationIcon string
	BadgeIcon        string
	Patterns         []scriptPattern
}

type scriptPattern struct {
	Key    string
	Source string
	Flags  string
}

// Render produces the service worker script for a cache configuration
func Render(cfg models.ServiceWorkerConfig, opts Options) (string, error) {
	patterns := CompilePatterns(cfg.CachePatterns, opts.Logger)

	scope := normalizeScope(opts.Scope)
	iconPath := "/" + strings.Trim(opts.IconPath, "/")
	if iconPath == "/" {
		iconPath = "/images/icons"
	}
	offline := opts.OfflineHTML
	if offline == "" {
		offline = defaultOfflineHTML
	}
	precache := cfg.PrecacheURLs
	if precache == nil {
		precache = []string{}
	}

	data := scriptData{
		Title:            strings.Join(strings.Fields(opts.AppName), " "),
		AppName:          jsString(opts.AppName),
		CacheName:        jsString(cfg.CacheName),
		OfflineURL:       jsString(cfg.OfflineURL),
		Scope:            jsString(scope),
		PrecacheURLs:     jsValue(precache),
		CacheFirst:       jsValue(CacheFirstClasses),
		OfflineHTML:      jsString(offline),
		NotificationIcon: jsString(iconPath + "/icon-192x192.png"),
		BadgeIcon:        jsString(iconPath + "/icon-96x96.png"),
	}
	for _, p := range patterns {
		data.Patterns = append(data.Patterns, scriptPattern{
			Key:    jsString(p.Name),
			Source: jsString(p.Source),
			Flags:  jsString(p.Flags),
		})
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render service worker: %w", err)
	}
	return buf.String(), nil
}

func normalizeScope(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return "/"
	}
	if !strings.HasPrefix(scope, "/") {
		scope = "/" + scope
	}
	if len(scope) > 1 {
		scope = strings.TrimSuffix(scope, "/")
	}
	return scope
}

func jsString(s string) string {
	return jsValue(s)
}

// jsValue encodes v as a JavaScript literal; json escapes <, > and & so the
// output is safe inside inline scripts too.
func jsValue(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

const defaultOfflineHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Offline</title>
</head>
<body style="font-family: sans-serif; text-align: center; padding: 2rem;">
<h1>You're Offline</h1>
<p>It looks like you've lost your internet connection.</p>
<button onclick="window.location.reload()">Try Again</button>
</body>
</html>`
