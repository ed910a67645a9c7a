package render

import (
	"encoding/binary"
	"fmt"
	"image"
	"time"
)

// ANI files are RIFF containers: an "anih" header chunk, a LIST of
// "icon" chunks (each an embedded CUR/ICO file), an optional "rate"
// chunk with one display rate per step, and an optional "seq " chunk
// mapping steps to frame indices. Rates are in jiffies (1/60 s).

const jiffy = time.Second / 60

// anih field offsets within the chunk body.
const anihDispRateOff = 28

// decodeAni decodes every animation step of an ANI cursor into frames
// and matching per-frame display durations.
func decodeAni(data []byte) ([]image.Image, []time.Duration, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "ACON" {
		return nil, nil, fmt.Errorf("%w: not an ANI resource", ErrUnsupportedFormat)
	}

	var (
		defaultRate uint32 = 10 // jiffies per frame when nothing says otherwise
		rates       []uint32
		seq         []uint32
		icons       [][]byte
	)

	walkRiffChunks(data[12:], func(id string, body []byte) {
		switch id {
		case "anih":
			if len(body) >= anihDispRateOff+4 {
				if rate := binary.LittleEndian.Uint32(body[anihDispRateOff:]); rate > 0 {
					defaultRate = rate
				}
			}
		case "rate":
			rates = readUint32s(body)
		case "seq ":
			seq = readUint32s(body)
		case "LIST":
			if len(body) >= 4 && string(body[0:4]) == "fram" {
				walkRiffChunks(body[4:], func(id string, body []byte) {
					if id == "icon" {
						icons = append(icons, body)
					}
				})
			}
		}
	})

	if len(icons) == 0 {
		return nil, nil, fmt.Errorf("%w: ani has no frames", ErrUnsupportedFormat)
	}

	steps := len(seq)
	if steps == 0 {
		steps = len(icons)
	}

	frames := make([]image.Image, 0, steps)
	delays := make([]time.Duration, 0, steps)
	decoded := make(map[uint32]image.Image, len(icons))
	for i := range steps {
		idx := uint32(i)
		if len(seq) > 0 {
			idx = seq[i]
		}
		if int(idx) >= len(icons) {
			return nil, nil, fmt.Errorf("%w: seq step %d references frame %d of %d", ErrUnsupportedFormat, i, idx, len(icons))
		}
		frame, ok := decoded[idx]
		if !ok {
			var err error
			frame, err = decodeCur(icons[idx])
			if err != nil {
				return nil, nil, fmt.Errorf("render: ani frame %d: %w", idx, err)
			}
			decoded[idx] = frame
		}
		rate := defaultRate
		if i < len(rates) && rates[i] > 0 {
			rate = rates[i]
		}
		frames = append(frames, frame)
		delays = append(delays, time.Duration(rate)*jiffy)
	}
	return frames, delays, nil
}

// walkRiffChunks calls fn for each top-level chunk in data. Chunk
// bodies are padded to even sizes; malformed tails are ignored.
func walkRiffChunks(data []byte, fn func(id string, body []byte)) {
	off := 0
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		start := off + 8
		if size < 0 || start+size > len(data) {
			return
		}
		fn(id, data[start:start+size])
		off = start + size
		if size%2 == 1 {
			off++
		}
	}
}

func readUint32s(body []byte) []uint32 {
	vals := make([]uint32, 0, len(body)/4)
	for off := 0; off+4 <= len(body); off += 4 {
		vals = append(vals, binary.LittleEndian.Uint32(body[off:off+4]))
	}
	return vals
}
