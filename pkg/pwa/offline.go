package pwa

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/huanfeng/adminpwa/internal/i18n"
	"github.com/huanfeng/adminpwa/pkg/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Routes used by the rendered pages
const (
	ManifestRoute      = "/manifest.json"
	ServiceWorkerRoute = "/sw.js"
	BrowserConfigRoute = "/browserconfig.xml"
	FaviconRoute       = "/favicon.ico"
)

type offlineText struct {
	Title         string
	Subtitle      string
	FeaturesTitle string
	Features      []string
	Retry         string
	Home          string
	OfflineStatus string
	OnlineStatus  string
}

type offlinePage struct {
	Lang        string
	Dir         string
	Name        string
	ThemeColor  string
	StartURL    string
	FaviconURL  string
	ManifestURL string
	RTL         bool
	Theme       template.CSS
	Background  template.CSS
	DirCSS      template.CSS
	Start       template.CSS
	End         template.CSS
	Text        offlineText
}

// RenderOffline renders the offline fallback page in the configured language
func RenderOffline(cfg models.PwaConfig) (string, error) {
	tr := i18n.For(cfg.Lang)
	rtl := cfg.Dir == DirRTL
	start, end := "left", "right"
	if rtl {
		start, end = end, start
	}

	page := offlinePage{
		Lang:        cfg.Lang,
		Dir:         cfg.Dir,
		Name:        cfg.Name,
		ThemeColor:  cfg.ThemeColor,
		StartURL:    cfg.StartURL,
		FaviconURL:  IconURL(cfg.Icons.OutputPath, IconSpec{Size: 32, Purpose: PurposeAny}),
		ManifestURL: ManifestRoute,
		RTL:         rtl,
		Theme:       cssColor(cfg.ThemeColor, FallbackThemeColor),
		Background:  cssColor(cfg.BackgroundColor, FallbackBackgroundColor),
		DirCSS:      template.CSS(dirOrDefault(cfg.Dir)),
		Start:       template.CSS(start),
		End:         template.CSS(end),
		Text: offlineText{
			Title:         tr.T("pwa.offline.title"),
			Subtitle:      tr.T("pwa.offline.subtitle"),
			FeaturesTitle: tr.T("pwa.features.title"),
			Features: []string{
				tr.T("pwa.features.cachedPages"),
				tr.T("pwa.features.offlineForms"),
				tr.T("pwa.features.localStorage"),
				tr.T("pwa.features.autoSync"),
			},
			Retry:         tr.T("pwa.offline.retry"),
			Home:          tr.T("pwa.offline.home"),
			OfflineStatus: tr.T("pwa.offline.status"),
			OnlineStatus:  tr.T("pwa.online.status"),
		},
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "offline.html.tmpl", page); err != nil {
		return "", fmt.Errorf("render offline page: %w", err)
	}
	return buf.String(), nil
}

// cssColor only lets validated hex colors reach a style block
func cssColor(value, fallback string) template.CSS {
	if IsHexColor(value) {
		return template.CSS(value)
	}
	return template.CSS(fallback)
}

func dirOrDefault(dir string) string {
	if dir == DirRTL {
		return DirRTL
	}
	return DirLTR
}
