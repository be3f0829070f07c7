package icons

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// MinimalBackend uses bilinear scaling from x/image and is always available
type MinimalBackend struct {
	base
}

func NewMinimalBackend() *MinimalBackend {
	return &MinimalBackend{}
}

func (b *MinimalBackend) Info() BackendInfo {
	return BackendInfo{Name: "minimal", Priority: 30, Quality: "basic"}
}

func (b *MinimalBackend) Probe() error {
	return nil
}

func (b *MinimalBackend) Decode(path string, data []byte, fill color.Color) (*Source, error) {
	if DetectFormat(path, data) == FormatSVG {
		return decodeDegraded(path, data, fill)
	}
	return decodeRasterSource(path, data)
}

func (b *MinimalBackend) Resize(src *Source, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size %d", size)
	}
	if src.Kind == KindVector {
		return renderTile(size, src.Fill), nil
	}
	canvas := newCanvas(size)
	sb := src.Image.Bounds()
	scaleInto(canvas, fitRect(sb.Dx(), sb.Dy(), size), src.Image, draw.ApproxBiLinear)
	return canvas, nil
}
