// Package icons generates PWA icon sets from one source image.
package icons

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// SourceKind tells vector and raster sources apart
type SourceKind int

const (
	KindRaster SourceKind = iota
	KindVector
)

func (k SourceKind) String() string {
	if k == KindVector {
		return "vector"
	}
	return "raster"
}

// Source is a loaded source image. Raster sources are decoded once and
// reused for every size; vector sources are re-rendered per size.
type Source struct {
	Path  string
	Kind  SourceKind
	Image image.Image // decoded raster, nil for vector sources
	SVG   []byte      // raw document for vector sources

	// Degraded is set when a backend cannot render vectors and stands in a flat tile
	Degraded bool
	Fill     color.Color

	vector interface{} // backend-specific parsed document
}

// BackendInfo describes a backend
type BackendInfo struct {
	Name     string
	Priority int // lower number = higher priority
	Vector   bool
	Quality  string
}

// Backend is one image processing strategy
type Backend interface {
	Info() BackendInfo
	// Probe checks at startup that the backend actually works
	Probe() error
	// Decode loads a source; fill colors degraded vector tiles
	Decode(path string, data []byte, fill color.Color) (*Source, error)
	// Resize fits the source into a transparent size×size canvas, keeping aspect
	Resize(src *Source, size int) (*image.NRGBA, error)
	// CompositeOver draws src over dst with its top-left corner at at
	CompositeOver(dst draw.Image, src image.Image, at image.Point)
	WritePNG(path string, img image.Image) error
}

// base carries the operations every backend shares
type base struct{}

func (base) CompositeOver(dst draw.Image, src image.Image, at image.Point) {
	r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}

func (base) WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// decodeDegraded handles a vector source on a backend that cannot render it
func decodeDegraded(path string, data []byte, fill color.Color) (*Source, error) {
	if fill == nil {
		fill = color.NRGBA{R: 0xA7, G: 0x7B, B: 0x56, A: 0xFF}
	}
	return &Source{Path: path, Kind: KindVector, SVG: data, Degraded: true, Fill: fill}, nil
}

// fitRect returns the centered rectangle of a w×h image scaled into size×size
func fitRect(w, h, size int) image.Rectangle {
	if w <= 0 || h <= 0 {
		return image.Rect(0, 0, size, size)
	}
	scale := float64(size) / float64(max(w, h))
	tw := max(1, int(math.Round(float64(w)*scale)))
	th := max(1, int(math.Round(float64(h)*scale)))
	x := (size - tw) / 2
	y := (size - th) / 2
	return image.Rect(x, y, x+tw, y+th)
}

func newCanvas(size int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, size, size))
}

// renderTile draws a rounded square of the fill color, the stand-in for
// vector sources on raster-only backends.
func renderTile(size int, fill color.Color) *image.NRGBA {
	img := newCanvas(size)
	s := float32(size)
	r := s * 0.18

	var z vector.Rasterizer
	z.Reset(size, size)
	z.MoveTo(r, 0)
	z.LineTo(s-r, 0)
	z.QuadTo(s, 0, s, r)
	z.LineTo(s, s-r)
	z.QuadTo(s, s, s-r, s)
	z.LineTo(r, s)
	z.QuadTo(0, s, 0, s-r)
	z.LineTo(0, r)
	z.QuadTo(0, 0, r, 0)
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})
	return img
}

// scaleInto resamples src into rect of dst with an x/image interpolator
func scaleInto(dst draw.Image, rect image.Rectangle, src image.Image, interp draw.Interpolator) {
	interp.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
}
