package preview

import "errors"

// ErrNoPreview reports that a fetch settled successfully but produced
// no usable preview (for example an animated resource with zero
// frames). Nothing is cached for the key, so a later call retries.
var ErrNoPreview = errors.New("preview: no preview available")
