// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

// aspectTolerance keeps standard framebuffer sizes from being scaled by a
// few pixels when the sink's physical aspect is only approximately square.
const aspectTolerance = 0.02

// AspectFit returns the largest rectangle of the source's apparent aspect
// ratio that fits a sink of sinkW by sinkH pixels. pixelAspect is the
// source's pixel x-to-y size ratio; physW and physH are the sink's physical
// dimensions, used to honor non-square sink pixels, with sink pixels assumed
// square when either is zero.
func AspectFit(srcW, srcH int, pixelAspect float64, sinkW, sinkH, physW, physH int) (w, h int) {
	w, h = sinkW, sinkH

	if physW == 0 || physH == 0 {
		physW, physH = sinkW, sinkH
	}

	xFactor := float64(srcW) * pixelAspect * float64(physH)
	yFactor := float64(srcH) * float64(physW)

	switch {
	case xFactor < yFactor*(1-aspectTolerance):
		w = int(xFactor*float64(w)/yFactor + 0.5)
	case xFactor*(1-aspectTolerance) > yFactor:
		h = int(yFactor*float64(h)/xFactor + 0.5)
	}
	return w, h
}
