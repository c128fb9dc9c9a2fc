// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geom provides the rectangle and affine-transform math of the
// composition engine: mapping windows between buffer and display
// coordinates, aspect-preserving fitting, and visible-region clipping.
package geom

import (
	"fmt"
	"image"
)

// Rect is an integer rectangle in x, y, width, height form, the shape the
// display controller's crop and window registers take.
//
// A Rect may transiently carry negative extents while its axes are realigned
// during clipping; see ClipToRegion.
type Rect struct {
	X, Y int
	W, H int
}

// FromBounds converts an image.Rectangle to a Rect.
func FromBounds(b image.Rectangle) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, W: b.Dx(), H: b.Dy()}
}

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// String formats r in X geometry form, WxH+X+Y.
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", r.W, r.H, r.X, r.Y)
}
