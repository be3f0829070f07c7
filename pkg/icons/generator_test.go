package icons

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pwaerrors "github.com/huanfeng/adminpwa/internal/errors"
	"github.com/huanfeng/adminpwa/pkg/pwa"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">
<rect x="0" y="0" width="100" height="100" fill="#ff0000"/>
</svg>`

func writeSolidPNG(t *testing.T, dir string, size int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, "source.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func isRed(c color.NRGBA) bool {
	return c.R > 200 && c.G < 50 && c.B < 50 && c.A > 200
}

func isBlue(c color.NRGBA) bool {
	return c.B > 200 && c.R < 50 && c.G < 50 && c.A > 200
}

func TestGenerate_DefaultSizes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSolidPNG(t, dir, 600, red)
	out := filepath.Join(dir, "icons")
	sizes := []int{72, 96, 128, 144, 152, 192, 384, 512}

	result, err := NewGenerator().Generate(context.Background(), Request{
		Source:        source,
		OutputDir:     out,
		Sizes:         sizes,
		MaskableSizes: []int{192, 512},
		Background:    blue,
	})
	require.NoError(t, err)
	assert.Equal(t, "vector", result.Backend)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 10, result.Generated())

	for _, n := range sizes {
		img := readPNG(t, filepath.Join(out, pwa.IconFileName(n, pwa.PurposeAny)))
		assert.Equal(t, n, img.Bounds().Dx())
		assert.Equal(t, n, img.Bounds().Dy())
	}
	for _, n := range []int{192, 512} {
		img := readPNG(t, filepath.Join(out, pwa.IconFileName(n, pwa.PurposeMaskable)))
		assert.Equal(t, n, img.Bounds().Dx())
	}
}

func TestGenerate_MaskableSafeZone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSolidPNG(t, dir, 256, red)

	result, err := NewGenerator().Generate(context.Background(), Request{
		Source:        source,
		OutputDir:     dir,
		MaskableSizes: []int{512},
		Background:    blue,
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	img := readPNG(t, result.Files[0])
	assert.True(t, isBlue(nrgbaAt(img, 50, 50)), "padding is filled")
	assert.True(t, isRed(nrgbaAt(img, 51, 51)), "safe zone starts at pad")
	assert.True(t, isRed(nrgbaAt(img, 459, 459)), "safe zone ends at pad+safe-1")
	assert.True(t, isBlue(nrgbaAt(img, 460, 460)), "odd residual goes right and bottom")
	assert.True(t, isBlue(nrgbaAt(img, 511, 0)))
}

func TestMaskableGeometry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size, safe, pad int
	}{
		{512, 409, 51},
		{192, 153, 19},
		{100, 80, 10},
		{1, 0, 0},
	}
	for _, tt := range tests {
		safe, pad := MaskableGeometry(tt.size)
		assert.Equal(t, tt.safe, safe, "size %d", tt.size)
		assert.Equal(t, tt.pad, pad, "size %d", tt.size)
	}
}

func TestGenerate_VectorSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "logo.svg")
	require.NoError(t, os.WriteFile(source, []byte(testSVG), 0644))

	result, err := NewGenerator().Generate(context.Background(), Request{
		Source:      source,
		OutputDir:   dir,
		Sizes:       []int{48, 512},
		FaviconPath: filepath.Join(dir, "favicon.ico"),
	})
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Len(t, result.Files, 3)

	img := readPNG(t, filepath.Join(dir, "icon-512x512.png"))
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.True(t, isRed(nrgbaAt(img, 256, 256)))

	data, err := os.ReadFile(filepath.Join(dir, "favicon.ico"))
	require.NoError(t, err)
	assert.Equal(t, FormatICO, DetectFormat("favicon.ico", data))
	fav, err := DecodeICO(data)
	require.NoError(t, err)
	assert.Equal(t, FaviconSize, fav.Bounds().Dx())
}

func TestGenerate_MissingSource(t *testing.T) {
	t.Parallel()

	chain := NewBackendChain(nil, &countingBackend{})
	result, err := NewGenerator(WithChain(chain)).Generate(context.Background(), Request{
		Source:    filepath.Join(t.TempDir(), "nope.png"),
		OutputDir: t.TempDir(),
		Sizes:     []int{192},
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, pwaerrors.ErrorTypeMissingSource, pwaerrors.TypeOf(err))
	assert.Zero(t, chain.backends[0].(*countingBackend).probes, "no backend touched")
}

func TestGenerate_SkipsInvalidSizes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSolidPNG(t, dir, 64, red)
	progress := utils.NewProgressBarTo(&bytes.Buffer{}, 2, "icons")

	result, err := NewGenerator(WithProgress(progress)).Generate(context.Background(), Request{
		Source:    source,
		OutputDir: dir,
		Sizes:     []int{0, 32, -5, 32},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, -5}, result.Skipped)
	assert.Len(t, result.Files, 1)
	assert.Zero(t, progress.Failed())
}

func TestGenerate_DegradedOnRasterBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "logo.svg")
	require.NoError(t, os.WriteFile(source, []byte(testSVG), 0644))

	chain := DefaultChain(nil)
	chain.Disable("vector")
	result, err := NewGenerator(WithChain(chain)).Generate(context.Background(), Request{
		Source:     source,
		OutputDir:  dir,
		Sizes:      []int{96},
		Background: blue,
	})
	require.NoError(t, err)
	assert.Equal(t, "raster", result.Backend)
	assert.True(t, result.Degraded)

	img := readPNG(t, filepath.Join(dir, "icon-96x96.png"))
	assert.True(t, isBlue(nrgbaAt(img, 48, 48)), "flat tile in the background color")
	assert.Zero(t, nrgbaAt(img, 0, 0).A, "rounded corner stays transparent")
}

func TestGenerate_CancelledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSolidPNG(t, dir, 32, red)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewGenerator().Generate(ctx, Request{Source: source, OutputDir: dir, Sizes: []int{16}})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, result.Files)
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, color.NRGBA{R: 0xFF, A: 0xFF}, ParseColor("#FF0000"))
	assert.Equal(t, color.NRGBA{R: 0xA7, G: 0x7B, B: 0x56, A: 0xFF}, ParseColor("nope"))
}
