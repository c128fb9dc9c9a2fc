// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "errors"

// ErrFullyClipped reports that no part of a window survived clipping.
var ErrFullyClipped = errors.New("geom: window fully clipped")

// ClipToRegion clips the display window win against the visible region and
// shrinks the buffer crop proportionally, so the surviving window still shows
// the content it showed before.
//
// The overlay hardware applies crop in buffer coordinates but places win in
// display coordinates, related through the overlay's own rotation and mirror.
// Clipping therefore walks display axes: the crop is realigned into display
// orientation first, adjusted, and realigned back. While realigned, a crop
// axis that maps backwards along its display direction carries a negative
// extent; callers never observe this.
//
// Returns ErrFullyClipped when nothing survives, leaving crop and win in an
// unspecified state.
func ClipToRegion(crop, win *Rect, region Rect, rotation int, mirror bool) error {
	cx := [2]int{crop.X, crop.Y}
	cw := [2]int{crop.W, crop.H}
	wx := [2]int{win.X, win.Y}
	ww := [2]int{win.W, win.H}
	lt := [2]int{region.X, region.Y}
	rb := [2]int{region.X + region.W, region.Y + region.H}

	swap := rotation&1 != 0
	s := 0
	if swap {
		s = 1
	}

	flip := func(axis int) {
		cw[axis] = -cw[axis]
		cx[axis] -= cw[axis]
	}

	// Align crop axes with display coordinates. A quarter turn reverses the
	// axis that becomes display x, a half turn reverses both display axes,
	// and mirror reverses display x again.
	if swap {
		flip(1)
	}
	if rotation&2 != 0 {
		flip(1 - s)
	}
	if mirror != (rotation&2 != 0) {
		flip(s)
	}

	for c := 0; c < 2; c++ {
		b := c ^ s // buffer axis feeding display axis c

		if ww[c] <= 0 || rb[c] <= lt[c] ||
			wx[c]+ww[c] <= lt[c] || wx[c] >= rb[c] || cw[b] == 0 {
			return ErrFullyClipped
		}
		if wx[c] < lt[c] {
			d := (lt[c] - wx[c]) * cw[b] / ww[c]
			cx[b] += d
			cw[b] -= d
			ww[c] -= lt[c] - wx[c]
			wx[c] = lt[c]
		}
		if wx[c]+ww[c] > rb[c] {
			cw[b] = cw[b] * (rb[c] - wx[c]) / ww[c]
			ww[c] = rb[c] - wx[c]
		}
		if cw[b] == 0 || ww[c] == 0 {
			return ErrFullyClipped
		}
	}

	// Realign crop axes back to buffer coordinates. The two conditional
	// flips touch different axes and commute; the swap flip must undo last.
	if rotation&2 != 0 {
		flip(1 - s)
	}
	if mirror != (rotation&2 != 0) {
		flip(s)
	}
	if swap {
		flip(1)
	}

	crop.X, crop.Y, crop.W, crop.H = cx[0], cx[1], cw[0], cw[1]
	win.X, win.Y, win.W, win.H = wx[0], wx[1], ww[0], ww[1]
	return nil
}
