package pwa

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/huanfeng/adminpwa/pkg/models"
)

// BrowserConfig is the Microsoft tile configuration document
type BrowserConfig struct {
	XMLName xml.Name  `xml:"browserconfig"`
	Tile    TileBlock `xml:"msapplication>tile"`
}

// TileBlock lists the tile logos and the tile color
type TileBlock struct {
	Square70  TileImage `xml:"square70x70logo"`
	Square150 TileImage `xml:"square150x150logo"`
	Square310 TileImage `xml:"square310x310logo"`
	TileColor string    `xml:"TileColor"`
}

// TileImage is a tile logo reference
type TileImage struct {
	Src string `xml:"src,attr"`
}

// BuildBrowserConfig returns the tile document for a resolved configuration
func BuildBrowserConfig(cfg models.PwaConfig) BrowserConfig {
	tile := func(n int) TileImage {
		return TileImage{Src: IconURL(cfg.Icons.OutputPath, IconSpec{Size: n, Purpose: PurposeAny})}
	}
	return BrowserConfig{
		Tile: TileBlock{
			Square70:  tile(70),
			Square150: tile(150),
			Square310: tile(310),
			TileColor: cfg.ThemeColor,
		},
	}
}

// MarshalBrowserConfig renders the document with an XML header
func MarshalBrowserConfig(cfg models.PwaConfig) ([]byte, error) {
	body, err := xml.MarshalIndent(BuildBrowserConfig(cfg), "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode browserconfig: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// IsPWARequest reports whether a request comes from an installed app
func IsPWARequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.Header.Get("X-Requested-With") == "PWA" {
		return true
	}
	if r.URL != nil && r.URL.Query().Get("pwa") == "1" {
		return true
	}
	return strings.Contains(r.UserAgent(), "PWA")
}
