package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"golang.org/x/image/vector"
)

// Built-in cursors are drawn as filled outlines with the x/image
// vector rasterizer. Glyph coordinates live in a 32x32 design space
// and scale to the requested edge. Subpaths use non-zero winding, so
// a reversed inner ring cuts a hole.

type glyph [][]float32

var systemGlyphs map[string]glyph

var systemAliases = map[string]string{
	"Arrow":       "Normal",
	"Default":     "Normal",
	"Text":        "IBeam",
	"Crosshair":   "Cross",
	"Busy":        "Wait",
	"Link":        "Hand",
	"Unavailable": "No",
	"NWPen":       "Handwriting",
	"Pen":         "Handwriting",
}

func init() {
	systemGlyphs = map[string]glyph{
		"Normal": {
			{8, 4, 8, 24, 13, 19, 16, 26, 19, 24, 16, 18, 22, 18},
		},
		"IBeam": {
			rect(12, 5, 20, 7),
			rect(15, 7, 17, 25),
			rect(12, 25, 20, 27),
		},
		"Cross": {
			rect(15, 6, 17, 26),
			rect(6, 15, 26, 17),
		},
		"Wait": {
			{9, 5, 23, 5, 23, 8, 17, 16, 23, 24, 23, 27, 9, 27, 9, 24, 15, 16, 9, 8},
		},
		"Hand": {
			rect(13, 5, 17, 14),
			{9, 13, 23, 13, 24, 16, 24, 23, 20, 27, 12, 27, 9, 21},
		},
		"No": {
			circle(16, 16, 11, 24, false),
			circle(16, 16, 8, 24, true),
			{8.9, 11, 11, 8.9, 23.1, 21, 21, 23.1},
		},
		"SizeNS": {
			{16, 3, 21, 10, 18, 10, 18, 22, 21, 22, 16, 29, 11, 22, 14, 22, 14, 10, 11, 10},
		},
		"SizeWE": {
			{3, 16, 10, 11, 10, 14, 22, 14, 22, 11, 29, 16, 22, 21, 22, 18, 10, 18, 10, 21},
		},
		"SizeNWSE": {
			{6, 6, 13, 6, 10.5, 8.5, 23.5, 21.5, 26, 19, 26, 26, 19, 26, 21.5, 23.5, 8.5, 10.5, 6, 13},
		},
		"SizeNESW": {
			{26, 6, 26, 13, 23.5, 10.5, 10.5, 23.5, 13, 26, 6, 26, 6, 19, 8.5, 21.5, 21.5, 8.5, 19, 6},
		},
		"SizeAll": {
			rect(14, 9, 18, 23),
			rect(9, 14, 23, 18),
			{16, 3, 20, 9, 12, 9},
			{16, 29, 12, 23, 20, 23},
			{3, 16, 9, 12, 9, 20},
			{29, 16, 23, 20, 23, 12},
		},
		"UpArrow": {
			{16, 4, 22, 12, 18, 12, 18, 26, 14, 26, 14, 12, 10, 12},
		},
		"Help": {
			{5, 4, 5, 24, 10, 19, 13, 26, 16, 24, 13, 18, 19, 18},
			circle(23, 11, 5, 24, false),
			circle(23, 11, 3, 24, true),
			rect(21.5, 15, 24.5, 19),
			rect(21.5, 21, 24.5, 24),
		},
		"Handwriting": {
			{6, 26, 8, 20, 22, 6, 26, 10, 12, 24},
		},
		"AppStarting": {
			{5, 4, 5, 24, 10, 19, 13, 26, 16, 24, 13, 18, 19, 18},
			{21, 17, 31, 17, 31, 19, 27.5, 22.5, 31, 26, 31, 28, 21, 28, 21, 26, 24.5, 22.5, 21, 19},
		},
	}
}

func rect(x0, y0, x1, y1 float32) []float32 {
	return []float32{x0, y0, x1, y0, x1, y1, x0, y1}
}

// circle approximates a circle with n line segments. reverse flips the
// winding direction, which cuts a hole out of an enclosing subpath.
func circle(cx, cy, r float32, n int, reverse bool) []float32 {
	pts := make([]float32, 0, n*2)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		if reverse {
			a = -a
		}
		pts = append(pts,
			cx+r*float32(math.Cos(a)),
			cy+r*float32(math.Sin(a)))
	}
	return pts
}

// SystemCursors returns the canonical built-in cursor names, sorted.
func SystemCursors() []string {
	names := make([]string, 0, len(systemGlyphs))
	for name := range systemGlyphs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsSystemCursor reports whether name resolves to a built-in glyph.
func IsSystemCursor(name string) bool {
	if _, ok := systemGlyphs[name]; ok {
		return true
	}
	_, ok := systemAliases[name]
	return ok
}

func drawSystemGlyph(name string, edge int) (image.Image, error) {
	if canonical, ok := systemAliases[name]; ok {
		name = canonical
	}
	paths, ok := systemGlyphs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystemCursor, name)
	}

	scale := float32(edge) / 32
	ras := vector.NewRasterizer(edge, edge)
	for _, path := range paths {
		ras.MoveTo(path[0]*scale, path[1]*scale)
		for i := 2; i < len(path); i += 2 {
			ras.LineTo(path[i]*scale, path[i+1]*scale)
		}
		ras.ClosePath()
	}

	dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
	ras.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{})
	return dst, nil
}
