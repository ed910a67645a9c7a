// Package render produces displayable previews from cursor resources.
//
// It implements preview.Fetcher by decoding cursor files in-process
// (CUR/ICO, ANI, GIF, PNG, BMP, JPEG) and encoding each frame as a PNG
// data URI, downscaled to a bounded thumbnail edge. Built-in system
// cursors are drawn programmatically so previews exist without any OS
// assets.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sunshineplan/imgconv"

	_ "image/jpeg" // register JPEG decoder

	_ "golang.org/x/image/bmp" // register BMP decoder

	"github.com/cursorkit/preview"
)

// DefaultThumbnailEdge is the longest edge, in pixels, of generated
// previews.
const DefaultThumbnailEdge = 48

// Renderer errors.
var (
	ErrUnknownSystemCursor = errors.New("render: unknown system cursor")
	ErrUnsupportedFormat   = errors.New("render: unsupported cursor format")
)

const dataURIPrefix = "data:image/png;base64,"

// Renderer implements preview.Fetcher by decoding cursor resources
// locally. Safe for concurrent use.
type Renderer struct {
	edge   int
	logger *slog.Logger
}

var _ preview.Fetcher = (*Renderer)(nil)

// Option configures a Renderer.
type Option func(*Renderer)

// WithThumbnailEdge sets the longest edge of generated previews.
// Values < 1 keep the default.
func WithThumbnailEdge(px int) Option {
	return func(r *Renderer) {
		if px > 0 {
			r.edge = px
		}
	}
}

// WithLogger sets the logger for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New returns a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{edge: DefaultThumbnailEdge}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// FetchSystemPreview draws the glyph for a built-in cursor name.
func (r *Renderer) FetchSystemPreview(_ context.Context, name string) (string, error) {
	img, err := drawSystemGlyph(name, r.edge)
	if err != nil {
		return "", err
	}
	return r.encode(img)
}

// FetchFilePreview decodes a single-frame cursor file. For animated
// formats it yields the first frame.
func (r *Renderer) FetchFilePreview(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("render: read %s: %w", filepath.Base(path), err)
	}
	img, err := decodeStatic(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return "", err
	}
	r.log().Debug("decoded cursor", "path", filepath.Base(path), "bounds", img.Bounds())
	return r.encode(img)
}

// FetchAnimatedPreview decodes every frame of an ANI or animated GIF
// file, with one display duration per frame.
func (r *Renderer) FetchAnimatedPreview(_ context.Context, path string) (preview.Animated, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return preview.Animated{}, fmt.Errorf("render: read %s: %w", filepath.Base(path), err)
	}

	var (
		frames []image.Image
		delays []time.Duration
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ani":
		frames, delays, err = decodeAni(data)
	case ".gif":
		frames, delays, err = decodeAnimatedGIF(data)
	default:
		return preview.Animated{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return preview.Animated{}, err
	}
	r.log().Debug("decoded animated cursor", "path", filepath.Base(path), "frames", len(frames))

	anim := preview.Animated{
		Frames: make([]string, 0, len(frames)),
		Delays: delays,
	}
	for i, frame := range frames {
		payload, err := r.encode(frame)
		if err != nil {
			return preview.Animated{}, fmt.Errorf("render: frame %d: %w", i, err)
		}
		anim.Frames = append(anim.Frames, payload)
	}
	return anim, nil
}

func decodeStatic(data []byte, ext string) (image.Image, error) {
	switch ext {
	case ".cur", ".ico":
		return decodeCur(data)
	case ".ani":
		frames, _, err := decodeAni(data)
		if err != nil {
			return nil, err
		}
		return frames[0], nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, nil
}

func decodeAnimatedGIF(data []byte) ([]image.Image, []time.Duration, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if len(g.Image) == 0 {
		return nil, nil, fmt.Errorf("%w: gif has no frames", ErrUnsupportedFormat)
	}
	frames := make([]image.Image, len(g.Image))
	delays := make([]time.Duration, len(g.Image))
	for i, frame := range g.Image {
		frames[i] = frame
		// GIF delays are in hundredths of a second.
		delays[i] = time.Duration(g.Delay[i]) * 10 * time.Millisecond
	}
	return frames, delays, nil
}

// encode downscales img to the thumbnail edge and packs it into a PNG
// data URI.
func (r *Renderer) encode(img image.Image) (string, error) {
	img = thumbnail(img, r.edge)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("render: encode png: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func thumbnail(img image.Image, edge int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= edge && bounds.Dy() <= edge {
		return img
	}
	if bounds.Dx() >= bounds.Dy() {
		return imgconv.Resize(img, &imgconv.ResizeOption{Width: edge})
	}
	return imgconv.Resize(img, &imgconv.ResizeOption{Height: edge})
}
