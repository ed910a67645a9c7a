package preview

import (
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// animatedRecord is the cached form of an Animated entry. With
// compression enabled the frames hold zstd-packed payload bytes,
// otherwise the raw payload bytes.
type animatedRecord struct {
	frames [][]byte
	delays []time.Duration
	packed bool
}

// Shared stateless codec for EncodeAll/DecodeAll; both are safe for
// concurrent use.
var (
	frameEncoder, _ = zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
	frameDecoder, _ = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1))
)

func (s *Service) packAnimated(a Animated) animatedRecord {
	frames := make([][]byte, len(a.Frames))
	if !s.compressAnimated {
		for i, f := range a.Frames {
			frames[i] = []byte(f)
		}
		return animatedRecord{frames: frames, delays: a.Delays}
	}
	for i, f := range a.Frames {
		frames[i] = frameEncoder.EncodeAll([]byte(f), nil)
	}
	return animatedRecord{frames: frames, delays: a.Delays, packed: true}
}

func unpackAnimated(rec animatedRecord) (Animated, error) {
	frames := make([]string, len(rec.frames))
	for i, f := range rec.frames {
		if !rec.packed {
			frames[i] = string(f)
			continue
		}
		raw, err := frameDecoder.DecodeAll(f, nil)
		if err != nil {
			return Animated{}, fmt.Errorf("preview: unpack frame %d: %w", i, err)
		}
		frames[i] = string(raw)
	}
	return Animated{Frames: frames, Delays: rec.delays}, nil
}
