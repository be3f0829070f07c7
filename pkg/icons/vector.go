package icons

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const probeSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8"><rect width="8" height="8" fill="#000"/></svg>`

// VectorBackend renders SVG sources natively and resamples rasters with Lanczos3
type VectorBackend struct {
	base
}

// NewVectorBackend creates the highest quality backend
func NewVectorBackend() *VectorBackend {
	return &VectorBackend{}
}

func (b *VectorBackend) Info() BackendInfo {
	return BackendInfo{Name: "vector", Priority: 10, Vector: true, Quality: "best"}
}

// Probe renders a tiny document and checks that pixels were painted
func (b *VectorBackend) Probe() error {
	src, err := b.Decode("probe.svg", []byte(probeSVG), nil)
	if err != nil {
		return err
	}
	img, err := b.Resize(src, 4)
	if err != nil {
		return err
	}
	if img.NRGBAAt(2, 2).A == 0 {
		return fmt.Errorf("vector rasterizer produced an empty image")
	}
	return nil
}

func (b *VectorBackend) Decode(path string, data []byte, fill color.Color) (*Source, error) {
	if DetectFormat(path, data) != FormatSVG {
		return decodeRasterSource(path, data)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG %s: %w", path, err)
	}
	return &Source{Path: path, Kind: KindVector, SVG: data, Fill: fill, vector: icon}, nil
}

func (b *VectorBackend) Resize(src *Source, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size %d", size)
	}
	if src.Kind == KindRaster {
		return lanczosFit(src.Image, size), nil
	}

	icon, ok := src.vector.(*oksvg.SvgIcon)
	if !ok {
		return nil, fmt.Errorf("source %s was not decoded by the vector backend", src.Path)
	}
	canvas := newCanvas(size)
	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = size, size
	}
	rect := fitRect(w, h, size)
	icon.SetTarget(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))

	scanner := rasterx.NewScannerGV(size, size, canvas, canvas.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return canvas, nil
}

// decodeRasterSource decodes a bitmap source once for reuse at every size
func decodeRasterSource(path string, data []byte) (*Source, error) {
	format := DetectFormat(path, data)
	img, err := decodeRaster(data, format)
	if err != nil {
		return nil, err
	}
	return &Source{Path: path, Kind: KindRaster, Image: img}, nil
}

// lanczosFit resamples img into a transparent size×size canvas, keeping aspect
func lanczosFit(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	rect := fitRect(b.Dx(), b.Dy(), size)
	scaled := resize.Resize(uint(rect.Dx()), uint(rect.Dy()), img, resize.Lanczos3)

	canvas := newCanvas(size)
	base{}.CompositeOver(canvas, scaled, rect.Min)
	return canvas
}
