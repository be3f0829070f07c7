package pwa

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/huanfeng/adminpwa/internal/i18n"
	"github.com/huanfeng/adminpwa/pkg/models"
)

type iconLink struct {
	Sizes string
	Href  string
}

type iosText struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

type headText struct {
	InstallTitle       string
	InstallDescription string
	InstallButton      string
	Dismiss            string
	GotIt              string
	IOS                iosText
}

type headSnippet struct {
	ShortName        string
	ThemeColor       string
	Display          string
	Scope            string
	ManifestURL      string
	ServiceWorkerURL string
	BrowserConfigURL string
	FaviconICO       string
	TileImage        string
	TouchIcons       []iconLink
	Favicons         []iconLink
	Install          bool
	PromptDelay      int
	IOSDelay         int
	Theme            template.CSS
	DirCSS           template.CSS
	Text             headText
}

// HeadOptions tunes RenderHead for the host environment
type HeadOptions struct {
	// Debug hides the install banner unless installation.show_banner_in_debug is set
	Debug bool
	// Standalone marks a request from the installed app, which never shows the banner
	Standalone bool
}

// RenderHead renders the meta tags, icon links and, when installation is
// enabled, the localized install banner for the admin layout head.
func RenderHead(cfg models.PwaConfig, opts HeadOptions) (string, error) {
	tr := i18n.For(cfg.Lang)
	icon := func(n int) string {
		return IconURL(cfg.Icons.OutputPath, IconSpec{Size: n, Purpose: PurposeAny})
	}

	install := cfg.Installation.Enabled && !opts.Standalone && (!opts.Debug || cfg.Installation.ShowBannerInDebug)

	data := headSnippet{
		ShortName:        cfg.ShortName,
		ThemeColor:       cfg.ThemeColor,
		Display:          cfg.Display,
		Scope:            cfg.Scope,
		ManifestURL:      ManifestRoute,
		ServiceWorkerURL: ServiceWorkerRoute,
		BrowserConfigURL: BrowserConfigRoute,
		FaviconICO:       FaviconRoute,
		TileImage:        icon(144),
		TouchIcons: []iconLink{
			{Href: icon(152)},
			{Sizes: "152x152", Href: icon(152)},
			{Sizes: "180x180", Href: icon(192)},
		},
		Favicons: []iconLink{
			{Sizes: "32x32", Href: icon(32)},
			{Sizes: "16x16", Href: icon(16)},
		},
		Install:     install,
		PromptDelay: cfg.Installation.PromptDelay,
		IOSDelay:    cfg.Installation.IOSInstructionsDelay,
		Theme:       cssColor(cfg.ThemeColor, FallbackThemeColor),
		DirCSS:      template.CSS(dirOrDefault(cfg.Dir)),
		Text: headText{
			InstallTitle:       tr.T("pwa.install.title"),
			InstallDescription: tr.T("pwa.install.description"),
			InstallButton:      tr.T("pwa.install.button"),
			Dismiss:            tr.T("pwa.install.dismiss"),
			GotIt:              tr.T("pwa.ios.gotIt"),
			IOS: iosText{
				Title:       tr.T("pwa.ios.title"),
				Description: tr.T("pwa.ios.description"),
				Steps: []string{
					tr.T("pwa.ios.step1"),
					tr.T("pwa.ios.step2"),
					tr.T("pwa.ios.step3"),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "head.html.tmpl", data); err != nil {
		return "", fmt.Errorf("render head snippet: %w", err)
	}
	return buf.String(), nil
}
