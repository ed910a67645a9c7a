package preview

import "context"

// Fetcher produces displayable preview payloads for cursor resources.
// Implementations do the actual decode/render work; the Service only
// caches and coalesces their results.
//
// Static payloads are self-describing strings, typically
// "data:image/png;base64," URIs.
//
// Implementations must be safe for concurrent use.
type Fetcher interface {
	// FetchSystemPreview renders the preview for a built-in cursor.
	FetchSystemPreview(ctx context.Context, name string) (string, error)

	// FetchFilePreview renders the preview for a single-frame cursor file.
	FetchFilePreview(ctx context.Context, path string) (string, error)

	// FetchAnimatedPreview decodes every frame of a multi-frame cursor
	// file. It is only used by the on-demand animated path, never by
	// Preload.
	FetchAnimatedPreview(ctx context.Context, path string) (Animated, error)
}
