package preview

import (
	"path/filepath"
	"strings"
)

// AnimatedExt is the file extension of multi-frame cursor resources.
// Animated resources are decoded lazily on demand, never bulk-preloaded.
const AnimatedExt = ".ani"

// systemKeyPrefix namespaces built-in resources so their names cannot
// collide with file paths.
const systemKeyPrefix = "system:"

// Descriptor identifies one cursor resource. Path is empty for built-in
// system resources; user-supplied resources carry their file path,
// which is already a globally unique identifier.
type Descriptor struct {
	Name string
	Path string
}

// Key returns the cache key for the descriptor: "system:" + Name for
// built-in resources, the file path verbatim otherwise. Keys are
// case-sensitive and never normalized.
func (d Descriptor) Key() string {
	if d.Path == "" {
		return systemKeyPrefix + d.Name
	}
	return d.Path
}

// IsAnimated reports whether the descriptor refers to a multi-frame
// resource. The extension check is case-insensitive because the files
// come from case-insensitive filesystems.
func (d Descriptor) IsAnimated() bool {
	return strings.EqualFold(filepath.Ext(d.Path), AnimatedExt)
}
