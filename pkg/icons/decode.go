package icons

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ImageFormat is a source format detected from content
type ImageFormat int

const (
	FormatUnknown ImageFormat = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatWebP
	FormatBMP
	FormatICO
	FormatSVG
)

func (f ImageFormat) String() string {
	names := []string{"Unknown", "PNG", "JPEG", "GIF", "WebP", "BMP", "ICO", "SVG"}
	if int(f) < len(names) {
		return names[f]
	}
	return "Unknown"
}

var (
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicGIF  = []byte("GIF8")
	magicBMP  = []byte("BM")
	magicICO  = []byte{0x00, 0x00, 0x01, 0x00}
	magicRIFF = []byte("RIFF")
	magicWEBP = []byte("WEBP")
)

// DetectFormat inspects magic bytes, falling back to the file extension
// for SVG documents.
func DetectFormat(path string, data []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(data, magicPNG):
		return FormatPNG
	case bytes.HasPrefix(data, magicJPEG):
		return FormatJPEG
	case bytes.HasPrefix(data, magicGIF):
		return FormatGIF
	case len(data) >= 12 && bytes.HasPrefix(data, magicRIFF) && bytes.Equal(data[8:12], magicWEBP):
		return FormatWebP
	case bytes.HasPrefix(data, magicICO):
		return FormatICO
	case bytes.HasPrefix(data, magicBMP):
		return FormatBMP
	}

	if IsVectorPath(path) || looksLikeSVG(data) {
		return FormatSVG
	}
	return FormatUnknown
}

// IsVectorPath reports whether the extension names an SVG document
func IsVectorPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".svg")
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// decodeRaster decodes any supported bitmap format
func decodeRaster(data []byte, format ImageFormat) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	case FormatBMP:
		img, err = bmp.Decode(bytes.NewReader(data))
	case FormatICO:
		img, err = DecodeICO(data)
	case FormatPNG, FormatJPEG, FormatGIF:
		img, _, err = image.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported image format")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	return img, nil
}
