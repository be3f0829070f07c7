package pwa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huanfeng/adminpwa/pkg/models"
)

// Icon purposes
const (
	PurposeAny      = "any"
	PurposeMaskable = "maskable"
)

// IconSpec is one icon file to generate and list in the manifest
type IconSpec struct {
	Size    int
	Purpose string
}

// FileName returns the conventional file name of the icon
func (s IconSpec) FileName() string {
	return IconFileName(s.Size, s.Purpose)
}

// SizesAttr returns the "WxH" form of the size
func (s IconSpec) SizesAttr() string {
	return fmt.Sprintf("%dx%d", s.Size, s.Size)
}

// IconFileName returns icon-{n}x{n}.png or icon-{n}x{n}-maskable.png
func IconFileName(size int, purpose string) string {
	if purpose == PurposeMaskable {
		return fmt.Sprintf("icon-%dx%d-maskable.png", size, size)
	}
	return fmt.Sprintf("icon-%dx%d.png", size, size)
}

// ExpandIconSpecs returns the ordinary sizes ascending followed by the
// maskable sizes ascending. Non-positive and duplicate sizes are dropped.
func ExpandIconSpecs(sizes, maskable []int) []IconSpec {
	specs := make([]IconSpec, 0, len(sizes)+len(maskable))
	for _, n := range sortedSizes(sizes) {
		specs = append(specs, IconSpec{Size: n, Purpose: PurposeAny})
	}
	for _, n := range sortedSizes(maskable) {
		specs = append(specs, IconSpec{Size: n, Purpose: PurposeMaskable})
	}
	return specs
}

func sortedSizes(sizes []int) []int {
	seen := make(map[int]bool, len(sizes))
	out := make([]int, 0, len(sizes))
	for _, n := range sizes {
		if n <= 0 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// IconURL joins the icon output path and the file name into an absolute URL path
func IconURL(outputPath string, spec IconSpec) string {
	outputPath = strings.Trim(outputPath, "/")
	if outputPath == "" {
		return "/" + spec.FileName()
	}
	return "/" + outputPath + "/" + spec.FileName()
}

// ManifestIcon is one entry of the manifest icons list
type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
}

// Manifest is the web app manifest document
type Manifest struct {
	Name                      string                      `json:"name"`
	ShortName                 string                      `json:"short_name"`
	Description               string                      `json:"description"`
	StartURL                  string                      `json:"start_url"`
	Display                   string                      `json:"display"`
	BackgroundColor           string                      `json:"background_color"`
	ThemeColor                string                      `json:"theme_color"`
	Orientation               string                      `json:"orientation"`
	Scope                     string                      `json:"scope"`
	Lang                      string                      `json:"lang"`
	Dir                       string                      `json:"dir"`
	Categories                []string                    `json:"categories"`
	Icons                     []ManifestIcon              `json:"icons"`
	Shortcuts                 []models.Shortcut           `json:"shortcuts"`
	Screenshots               []models.Screenshot         `json:"screenshots"`
	RelatedApplications       []models.RelatedApplication `json:"related_applications"`
	PreferRelatedApplications bool                        `json:"prefer_related_applications"`
}

// BuildManifest maps a resolved configuration onto the manifest document.
// Missing fields degrade to empty values.
func BuildManifest(cfg models.PwaConfig) Manifest {
	specs := ExpandIconSpecs(cfg.Icons.Sizes, cfg.Icons.MaskableSizes)
	icons := make([]ManifestIcon, 0, len(specs))
	for _, spec := range specs {
		icons = append(icons, ManifestIcon{
			Src:     IconURL(cfg.Icons.OutputPath, spec),
			Sizes:   spec.SizesAttr(),
			Type:    "image/png",
			Purpose: spec.Purpose,
		})
	}

	return Manifest{
		Name:                      cfg.Name,
		ShortName:                 cfg.ShortName,
		Description:               cfg.Description,
		StartURL:                  cfg.StartURL,
		Display:                   cfg.Display,
		BackgroundColor:           cfg.BackgroundColor,
		ThemeColor:                cfg.ThemeColor,
		Orientation:               cfg.Orientation,
		Scope:                     cfg.Scope,
		Lang:                      cfg.Lang,
		Dir:                       cfg.Dir,
		Categories:                cloneSlice(cfg.Categories),
		Icons:                     icons,
		Shortcuts:                 cloneSlice(cfg.Shortcuts),
		Screenshots:               cloneSlice(cfg.Screenshots),
		RelatedApplications:       cloneSlice(cfg.RelatedApplications),
		PreferRelatedApplications: cfg.PreferRelatedApplications,
	}
}
