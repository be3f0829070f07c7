package icons

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// icoEntry is one 16-byte ICO directory entry
type icoEntry struct {
	Width      uint8 // 0 means 256
	Height     uint8 // 0 means 256
	ColorCount uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	Size       uint32
	Offset     uint32
}

func (e *icoEntry) width() int {
	if e.Width == 0 {
		return 256
	}
	return int(e.Width)
}

func (e *icoEntry) height() int {
	if e.Height == 0 {
		return 256
	}
	return int(e.Height)
}

// EncodeICO wraps PNG-encoded images into an ICO container
func EncodeICO(images ...image.Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to encode")
	}

	payloads := make([][]byte, len(images))
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() > 256 || b.Dy() > 256 {
			return nil, fmt.Errorf("ICO images are limited to 256x256, got %dx%d", b.Dx(), b.Dy())
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode ICO entry: %w", err)
		}
		payloads[i] = buf.Bytes()
	}

	var out bytes.Buffer
	header := []uint16{0, 1, uint16(len(images))}
	if err := binary.Write(&out, binary.LittleEndian, header); err != nil {
		return nil, err
	}

	offset := uint32(6 + 16*len(images))
	for i, img := range images {
		b := img.Bounds()
		entry := icoEntry{
			Width:    uint8(b.Dx() % 256),
			Height:   uint8(b.Dy() % 256),
			Planes:   1,
			BitCount: 32,
			Size:     uint32(len(payloads[i])),
			Offset:   offset,
		}
		if err := binary.Write(&out, binary.LittleEndian, entry); err != nil {
			return nil, err
		}
		offset += entry.Size
	}
	for _, p := range payloads {
		out.Write(p)
	}
	return out.Bytes(), nil
}

// DecodeICO returns the highest resolution image of an ICO file. PNG entries
// and uncompressed 24/32-bit BMP entries are supported.
func DecodeICO(data []byte) (image.Image, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("invalid ICO file: too short for header")
	}
	if reserved := binary.LittleEndian.Uint16(data[0:2]); reserved != 0 {
		return nil, fmt.Errorf("invalid ICO file: reserved field must be 0, got %d", reserved)
	}
	if typ := binary.LittleEndian.Uint16(data[2:4]); typ != 1 {
		return nil, fmt.Errorf("invalid ICO file: type must be 1, got %d", typ)
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return nil, fmt.Errorf("invalid ICO file: no images")
	}
	if len(data) < 6+count*16 {
		return nil, fmt.Errorf("invalid ICO file: too short for directory entries")
	}

	var best *icoEntry
	for i := 0; i < count; i++ {
		entry := &icoEntry{}
		if err := binary.Read(bytes.NewReader(data[6+i*16:6+(i+1)*16]), binary.LittleEndian, entry); err != nil {
			return nil, err
		}
		if entry.Size == 0 || int(entry.Offset)+int(entry.Size) > len(data) {
			continue
		}
		if best == nil || entry.width()*entry.height() > best.width()*best.height() {
			best = entry
		}
	}
	if best == nil {
		return nil, fmt.Errorf("invalid ICO file: no valid image entries")
	}

	payload := data[best.Offset : best.Offset+best.Size]
	if bytes.HasPrefix(payload, magicPNG) {
		img, err := png.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to decode PNG in ICO: %w", err)
		}
		return img, nil
	}
	return decodeICOBMP(payload, best)
}

// decodeICOBMP decodes a headerless DIB; its height covers the AND mask too
func decodeICOBMP(data []byte, entry *icoEntry) (image.Image, error) {
	if len(data) < 40 {
		return nil, fmt.Errorf("invalid ICO BMP: too short for header")
	}
	headerSize := int(binary.LittleEndian.Uint32(data[0:4]))
	width := int(int32(binary.LittleEndian.Uint32(data[4:8])))
	height := int(int32(binary.LittleEndian.Uint32(data[8:12]))) / 2
	bitCount := binary.LittleEndian.Uint16(data[14:16])
	if compression := binary.LittleEndian.Uint32(data[16:20]); compression != 0 {
		return nil, fmt.Errorf("invalid ICO BMP: compressed BMP not supported")
	}
	if width <= 0 {
		width = entry.width()
	}
	if height <= 0 {
		height = entry.height()
	}

	var bpp int
	switch bitCount {
	case 24:
		bpp = 3
	case 32:
		bpp = 4
	default:
		return nil, fmt.Errorf("invalid ICO BMP: unsupported bit depth %d", bitCount)
	}

	pixels := data[headerSize:]
	rowSize := ((width*bpp + 3) / 4) * 4
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := (height - 1 - y) * rowSize // bottom-up
		if row+width*bpp > len(pixels) {
			break
		}
		for x := 0; x < width; x++ {
			p := pixels[row+x*bpp:]
			a := uint8(255)
			if bpp == 4 {
				a = p[3]
			}
			img.SetNRGBA(x, y, color.NRGBA{R: p[2], G: p[1], B: p[0], A: a})
		}
	}
	return img, nil
}
