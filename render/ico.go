package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// CUR and ICO share the ICONDIR container format: a 6-byte directory
// header followed by 16-byte entries, each pointing at either a
// PNG-compressed image or a DIB (BITMAPINFOHEADER + XOR bitmap + AND
// mask, with the header height doubled to cover both bitmaps).

const (
	iconDirSize   = 6
	iconEntrySize = 16
	dibHeaderSize = 40
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// decodeCur decodes the largest image in a CUR or ICO file.
func decodeCur(data []byte) (image.Image, error) {
	if len(data) < iconDirSize {
		return nil, fmt.Errorf("%w: truncated icon directory", ErrUnsupportedFormat)
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return nil, fmt.Errorf("%w: icon directory is empty", ErrUnsupportedFormat)
	}

	// Pick the entry with the largest pixel area. A stored width or
	// height of 0 means 256.
	best, bestArea := -1, -1
	for i := range count {
		off := iconDirSize + i*iconEntrySize
		if off+iconEntrySize > len(data) {
			break
		}
		w, h := int(data[off]), int(data[off+1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		if w*h > bestArea {
			best, bestArea = i, w*h
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: truncated icon directory", ErrUnsupportedFormat)
	}

	off := iconDirSize + best*iconEntrySize
	size := binary.LittleEndian.Uint32(data[off+8 : off+12])
	imgOff := binary.LittleEndian.Uint32(data[off+12 : off+16])
	if uint64(imgOff)+uint64(size) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: image data out of bounds", ErrUnsupportedFormat)
	}
	payload := data[imgOff : imgOff+size]

	if bytes.HasPrefix(payload, pngMagic) {
		img, err := png.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: embedded png: %v", ErrUnsupportedFormat, err)
		}
		return img, nil
	}
	return decodeDIB(payload)
}

// decodeDIB decodes an uncompressed 24- or 32-bpp device-independent
// bitmap as stored inside an icon: bottom-up XOR bitmap followed by a
// 1-bpp AND transparency mask.
func decodeDIB(data []byte) (image.Image, error) {
	if len(data) < dibHeaderSize {
		return nil, fmt.Errorf("%w: truncated bitmap header", ErrUnsupportedFormat)
	}
	if hdr := binary.LittleEndian.Uint32(data[0:4]); hdr != dibHeaderSize {
		return nil, fmt.Errorf("%w: bitmap header size %d", ErrUnsupportedFormat, hdr)
	}
	width := int(int32(binary.LittleEndian.Uint32(data[4:8])))
	rawHeight := int(int32(binary.LittleEndian.Uint32(data[8:12])))
	bitCount := int(binary.LittleEndian.Uint16(data[14:16]))
	if compression := binary.LittleEndian.Uint32(data[16:20]); compression != 0 {
		return nil, fmt.Errorf("%w: compressed bitmap", ErrUnsupportedFormat)
	}

	// The header height covers XOR and AND bitmaps stacked.
	height := rawHeight / 2
	if rawHeight%2 != 0 {
		height = rawHeight
	}
	if width <= 0 || height <= 0 || width > 1024 || height > 1024 {
		return nil, fmt.Errorf("%w: bitmap dimensions %dx%d", ErrUnsupportedFormat, width, height)
	}

	var xorStride int
	switch bitCount {
	case 32:
		xorStride = width * 4
	case 24:
		xorStride = (width*3 + 3) &^ 3
	default:
		return nil, fmt.Errorf("%w: %d-bpp bitmap", ErrUnsupportedFormat, bitCount)
	}
	andStride := ((width + 31) / 32) * 4

	xorOff := dibHeaderSize
	if xorOff+xorStride*height > len(data) {
		return nil, fmt.Errorf("%w: truncated bitmap data", ErrUnsupportedFormat)
	}
	andOff := xorOff + xorStride*height
	if andOff+andStride*height > len(data) {
		// Some writers omit the AND mask for 32-bpp alpha icons.
		if bitCount != 32 {
			return nil, fmt.Errorf("%w: truncated transparency mask", ErrUnsupportedFormat)
		}
		andOff = -1
	}

	// 32-bpp icons carry per-pixel alpha only if any alpha byte is set;
	// an all-zero alpha channel means the AND mask holds transparency.
	hasAlpha := false
	if bitCount == 32 {
		for y := 0; y < height && !hasAlpha; y++ {
			row := xorOff + y*xorStride
			for x := range width {
				if data[row+x*4+3] != 0 {
					hasAlpha = true
					break
				}
			}
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		srcRow := xorOff + (height-1-y)*xorStride // bottom-up
		for x := range width {
			var r, g, b, a uint8
			switch bitCount {
			case 32:
				p := srcRow + x*4
				b, g, r = data[p], data[p+1], data[p+2]
				if hasAlpha {
					a = data[p+3]
				} else {
					a = 0xff
				}
			case 24:
				p := srcRow + x*3
				b, g, r = data[p], data[p+1], data[p+2]
				a = 0xff
			}
			if andOff >= 0 && !hasAlpha {
				maskRow := andOff + (height-1-y)*andStride
				if data[maskRow+x/8]>>(7-x%8)&1 == 1 {
					a = 0
				}
			}
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img, nil
}
