package icons

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// RasterBackend resamples bitmaps with Lanczos3 and cannot render SVG.
// Vector sources come out as a flat rounded tile in the fill color.
type RasterBackend struct {
	base
}

// NewRasterBackend creates the bitmap-only backend
func NewRasterBackend() *RasterBackend {
	return &RasterBackend{}
}

func (b *RasterBackend) Info() BackendInfo {
	return BackendInfo{Name: "raster", Priority: 20, Quality: "good"}
}

func (b *RasterBackend) Probe() error {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{A: 255})
	out := resize.Resize(4, 4, src, resize.Lanczos3)
	if out.Bounds().Dx() != 4 {
		return fmt.Errorf("resampler returned %dpx, want 4", out.Bounds().Dx())
	}
	return nil
}

func (b *RasterBackend) Decode(path string, data []byte, fill color.Color) (*Source, error) {
	if DetectFormat(path, data) == FormatSVG {
		return decodeDegraded(path, data, fill)
	}
	return decodeRasterSource(path, data)
}

func (b *RasterBackend) Resize(src *Source, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size %d", size)
	}
	if src.Kind == KindVector {
		return renderTile(size, src.Fill), nil
	}
	return lanczosFit(src.Image, size), nil
}
