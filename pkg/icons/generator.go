package icons

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	pwaerrors "github.com/huanfeng/adminpwa/internal/errors"
	"github.com/huanfeng/adminpwa/pkg/pwa"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

// FaviconSize is the pixel size wrapped into favicon.ico
const FaviconSize = 32

// Request describes one icon generation run
type Request struct {
	Source        string
	OutputDir     string
	Sizes         []int
	MaskableSizes []int
	// ExtraSizes are written like Sizes but never listed in the manifest
	ExtraSizes  []int
	FaviconPath string
	// Background fills maskable canvases and degraded vector tiles
	Background color.Color
	Backend    string
}

// Result reports what a run produced
type Result struct {
	Backend  string
	Degraded bool
	Files    []string
	Skipped  []int
	Failed   []string
}

// Generated is the number of files written
func (r *Result) Generated() int {
	return len(r.Files)
}

// Progress receives one step per file
type Progress interface {
	Step(label string, ok bool)
}

// Generator writes icon sets
type Generator struct {
	chain    *BackendChain
	logger   utils.Logger
	progress Progress
}

// Option configures a Generator
type Option func(*Generator)

// WithChain replaces the default backend chain
func WithChain(chain *BackendChain) Option {
	return func(g *Generator) { g.chain = chain }
}

// WithLogger sets the logger
func WithLogger(logger utils.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithProgress reports each written file
func WithProgress(p Progress) Option {
	return func(g *Generator) { g.progress = p }
}

// NewGenerator creates a generator over the default backend chain
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = utils.NewNopLogger()
	}
	if g.chain == nil {
		g.chain = DefaultChain(g.logger)
	}
	return g
}

// SelectBackend picks a backend from the default chain
func SelectBackend(preferred string, logger utils.Logger) (Backend, error) {
	return DefaultChain(logger).Select(preferred)
}

// PlannedFiles returns the number of files a request will write
func PlannedFiles(req Request) int {
	n := len(pwa.ExpandIconSpecs(append(append([]int{}, req.Sizes...), req.ExtraSizes...), req.MaskableSizes))
	if req.FaviconPath != "" {
		n++
	}
	return n
}

// Generate writes every requested icon. The source is checked before any
// backend is touched; per-file failures are collected, not returned.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	data, err := readSource(req.Source)
	if err != nil {
		return nil, err
	}

	backend, err := g.chain.Select(req.Backend)
	if err != nil {
		return nil, err
	}
	info := backend.Info()

	fill := req.Background
	if fill == nil {
		fill = ParseColor(pwa.FallbackThemeColor)
	}

	src, err := backend.Decode(req.Source, data, fill)
	if err != nil {
		return nil, pwaerrors.WrapError(err, pwaerrors.ErrorTypeRender, "SOURCE_DECODE_FAILED", "Failed to decode source image").
			WithContext("path", req.Source).
			WithContext("backend", info.Name)
	}
	if src.Degraded {
		g.logger.Warn("Backend %s cannot render SVG, %s is replaced by a flat tile", info.Name, req.Source)
	}

	result := &Result{Backend: info.Name, Degraded: src.Degraded}
	result.Skipped = skippedSizes(req)
	for _, n := range result.Skipped {
		g.logger.Warn("Skipping invalid icon size %d", n)
	}

	all := append(append([]int{}, req.Sizes...), req.ExtraSizes...)
	for _, spec := range pwa.ExpandIconSpecs(all, req.MaskableSizes) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := filepath.Join(req.OutputDir, spec.FileName())
		var img image.Image
		if spec.Purpose == pwa.PurposeMaskable {
			img, err = composeMaskable(backend, src, spec.Size, fill)
		} else {
			img, err = backend.Resize(src, spec.Size)
		}
		if err == nil {
			err = backend.WritePNG(path, img)
		}
		g.record(result, path, err)
	}

	if req.FaviconPath != "" {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		g.record(result, req.FaviconPath, writeFavicon(backend, src, req.FaviconPath))
	}

	g.logger.Info("Generated %d icons with %s backend (%d failed)", result.Generated(), info.Name, len(result.Failed))
	return result, nil
}

func (g *Generator) record(result *Result, path string, err error) {
	if err != nil {
		g.logger.Error("Failed to write %s: %v", path, err)
		result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", path, err))
	} else {
		g.logger.Debug("Wrote %s", path)
		result.Files = append(result.Files, path)
	}
	if g.progress != nil {
		g.progress.Step(filepath.Base(path), err == nil)
	}
}

func readSource(path string) ([]byte, error) {
	if path == "" {
		return nil, pwaerrors.NewMissingSourceError(path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		e := pwaerrors.NewMissingSourceError(path)
		e.Cause = err
		return nil, e
	}
	data, err := os.ReadFile(path)
	if err != nil {
		e := pwaerrors.NewMissingSourceError(path)
		e.Cause = err
		return nil, e
	}
	return data, nil
}

func skippedSizes(req Request) []int {
	var skipped []int
	for _, list := range [][]int{req.Sizes, req.ExtraSizes, req.MaskableSizes} {
		for _, n := range list {
			if n <= 0 {
				skipped = append(skipped, n)
			}
		}
	}
	return skipped
}

// MaskableGeometry returns the safe-zone edge and the top-left padding.
// The odd residual pixel goes to the right and bottom.
func MaskableGeometry(size int) (safe, pad int) {
	safe = size * 4 / 5
	pad = (size - safe) / 2
	return safe, pad
}

// composeMaskable fills the canvas and draws the source inside the safe zone
func composeMaskable(b Backend, src *Source, size int, fill color.Color) (*image.NRGBA, error) {
	safe, pad := MaskableGeometry(size)
	inner, err := b.Resize(src, safe)
	if err != nil {
		return nil, err
	}
	canvas := newCanvas(size)
	drawFill(canvas, fill)
	b.CompositeOver(canvas, inner, image.Pt(pad, pad))
	return canvas, nil
}

func drawFill(img *image.NRGBA, c color.Color) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, nc)
		}
	}
}

func writeFavicon(b Backend, src *Source, path string) error {
	img, err := b.Resize(src, FaviconSize)
	if err != nil {
		return err
	}
	data, err := EncodeICO(img)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ParseColor converts a #rrggbb string, returning the fallback theme color
// when it does not parse.
func ParseColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(pwa.FallbackThemeColor)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}
