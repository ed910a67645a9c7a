package preview

import "time"

// Animated is a decoded multi-frame preview: an ordered list of frame
// payloads plus one display duration per frame.
//
// Frames and Delays always have the same length. An Animated with zero
// frames carries no preview; the service reports it as ErrNoPreview
// rather than caching it.
type Animated struct {
	Frames []string
	Delays []time.Duration
}

// Empty reports whether the preview holds no frames.
func (a Animated) Empty() bool {
	return len(a.Frames) == 0
}

// TotalDuration returns the summed display time of all frames.
func (a Animated) TotalDuration() time.Duration {
	var total time.Duration
	for _, d := range a.Delays {
		total += d
	}
	return total
}
