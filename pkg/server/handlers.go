package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/pwa"
	"github.com/huanfeng/adminpwa/pkg/serviceworker"
)

const (
	mimeJavaScript = "application/javascript"
	mimeXML        = "application/xml"
	mimeIcon       = "image/x-icon"

	manifestCacheControl = "public, max-age=3600"
)

const fallbackOfflineHTML = `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>Offline</title></head>` +
	`<body><h1>You're Offline</h1></body></html>`

func (s *Server) handleManifest(c echo.Context) error {
	cfg := s.resolve(c)
	c.Response().Header().Set(echo.HeaderCacheControl, manifestCacheControl)
	return c.JSON(http.StatusOK, pwa.BuildManifest(cfg))
}

func (s *Server) handleServiceWorker(c echo.Context) error {
	cfg := s.resolve(c)
	h := c.Response().Header()
	h.Set("Service-Worker-Allowed", serviceWorkerScope(cfg.Scope))
	h.Set(echo.HeaderCacheControl, "no-cache")

	if data, ok := s.customAsset("sw.js"); ok {
		return c.Blob(http.StatusOK, mimeJavaScript, data)
	}

	script, err := serviceworker.Render(cfg.ServiceWorker, serviceworker.Options{
		AppName:     cfg.Name,
		Scope:       cfg.Scope,
		IconPath:    cfg.Icons.OutputPath,
		OfflineHTML: s.offlineDocument(cfg),
		Logger:      s.logger,
	})
	if err != nil {
		s.logger.Error("Service worker render failed, using defaults: %v", err)
		s.metrics.renderFailed("sw")
		script, err = serviceworker.Render(pwa.DefaultServiceWorker(), serviceworker.Options{AppName: cfg.Name})
		if err != nil {
			return c.Blob(http.StatusOK, mimeJavaScript, []byte("// service worker unavailable\n"))
		}
	}
	return c.Blob(http.StatusOK, mimeJavaScript, []byte(script))
}

func (s *Server) handleBrowserConfig(c echo.Context) error {
	if data, ok := s.customAsset("browserconfig.xml"); ok {
		return c.Blob(http.StatusOK, mimeXML, data)
	}

	data, err := pwa.MarshalBrowserConfig(s.resolve(c))
	if err != nil {
		s.logger.Error("browserconfig render failed: %v", err)
		s.metrics.renderFailed("browserconfig")
		data = fallbackBrowserConfig()
	}
	return c.Blob(http.StatusOK, mimeXML, data)
}

// fallbackBrowserConfig renders the built-in defaults with the fallback tile color
func fallbackBrowserConfig() []byte {
	cfg := pwa.Defaults()
	cfg.ThemeColor = pwa.FallbackThemeColor
	data, _ := pwa.MarshalBrowserConfig(cfg)
	return data
}

func (s *Server) handleFavicon(c echo.Context) error {
	if data, ok := s.customAsset("favicon.ico"); ok {
		return c.Blob(http.StatusOK, mimeIcon, data)
	}
	return c.NoContent(http.StatusNotFound)
}

func (s *Server) handleOffline(c echo.Context) error {
	return c.HTML(http.StatusOK, s.offlineDocument(s.resolve(c)))
}

func (s *Server) handleHead(c echo.Context) error {
	debug := s.debug
	if v, err := strconv.ParseBool(c.QueryParam("debug")); err == nil {
		debug = v
	}

	cfg := s.resolve(c)
	html, err := pwa.RenderHead(cfg, pwa.HeadOptions{Debug: debug, Standalone: pwa.IsPWARequest(c.Request())})
	if err != nil {
		s.logger.Error("Head render failed: %v", err)
		s.metrics.renderFailed("head")
		html = `<link rel="manifest" href="` + pwa.ManifestRoute + `">`
	}
	return c.HTML(http.StatusOK, html)
}

func (s *Server) offlineDocument(cfg models.PwaConfig) string {
	html, err := pwa.RenderOffline(cfg)
	if err != nil {
		s.logger.Error("Offline page render failed: %v", err)
		s.metrics.renderFailed("offline")
		return fallbackOfflineHTML
	}
	return html
}

// customAsset reads an operator-provided file from the public directory.
// Files published by setup carry a marker and are skipped.
func (s *Server) customAsset(name string) ([]byte, bool) {
	if s.cfg.PublicDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(s.cfg.PublicDir, name))
	if err != nil {
		return nil, false
	}
	if pwa.IsGenerated(data) {
		s.logger.Debug("Ignoring published %s, rendering from current config", name)
		return nil, false
	}
	s.logger.Debug("Serving custom %s from %s", name, s.cfg.PublicDir)
	s.metrics.customServed(name)
	return data, true
}

func serviceWorkerScope(scope string) string {
	if scope = strings.TrimSpace(scope); scope == "" {
		return "/"
	}
	return scope
}
