package hwc

import (
	"fmt"

	"github.com/godss/hwc/geom"
)

// DisplayTransform is the fixed transform between composition space and a
// display's scanout space. The primary panel usually has an identity
// transform; a mirroring sink combines region selection, reorientation and
// a fit onto the sink resolution.
type DisplayTransform struct {
	// Rotation in quarter turns, applied clockwise on the way out.
	Rotation int
	HFlip    bool

	// Scaling reports that overlays need per-overlay adjustment before
	// they land on this display.
	Scaling bool

	// Region is the source region in primary frame coordinates.
	Region geom.Rect

	// Matrix maps region coordinates to sink coordinates.
	Matrix geom.Matrix
}

// reorientMatrix builds the region-to-sink mapping:
// center on the region, reorient, scale to the fitted size, center on the
// sink.
func reorientMatrix(region geom.Rect, rotation int, hflip bool, xpy float64, sinkW, sinkH, mmW, mmH int) geom.Matrix {
	w, h := region.W, region.H

	m := geom.Identity()
	m = geom.Translate(-float64(w>>1)-float64(region.X), -float64(h>>1)-float64(region.Y)).Multiply(m)
	m = geom.RotateQuarter(rotation).Multiply(m)
	if hflip {
		m = geom.ScaleRatio(1, -1, 1, 1).Multiply(m)
	}

	if rotation&1 != 0 {
		w, h = h, w
		xpy = 1 / xpy
	}

	adjW, adjH := geom.AspectFit(w, h, xpy, sinkW, sinkH, mmW, mmH)

	m = geom.ScaleRatio(w, adjW, h, adjH).Multiply(m)
	m = geom.Translate(float64(sinkW>>1), float64(sinkH>>1)).Multiply(m)
	return m
}

// setupDisplayTransform recomputes a display's output transform. Runs when
// a display is attached, a mode is programmed, or the mirror setup changes.
func (c *Compositor) setupDisplayTransform(d *Display) error {
	t := &d.transform
	cfg := d.config()

	switch {
	case d.ix == DisplayPrimary:
		t.Region = geom.Rect{W: cfg.XRes, H: cfg.YRes}
		sinkW, sinkH := d.Info.Timings.XRes, d.Info.Timings.YRes
		if sinkW <= 0 || sinkH <= 0 {
			sinkW, sinkH = cfg.XRes, cfg.YRes
		}
		t.Matrix = reorientMatrix(t.Region, t.Rotation, false, c.lcdXPY, sinkW, sinkH, d.Info.WidthMM, d.Info.HeightMM)
		t.Scaling = t.Rotation != 0

	case d.Kind == KindHDMI:
		t.Region = c.mirrorRegion()
		sinkW, sinkH := d.Info.Timings.XRes, d.Info.Timings.YRes
		if sinkW <= 0 || sinkH <= 0 {
			return fmt.Errorf("hwc: display %d has no timings: %w", d.ix, ErrUnsupportedGeometry)
		}
		mmW, mmH := d.Info.WidthMM, d.Info.HeightMM
		if d.hdmi != nil && d.hdmi.mmWidth > 0 && d.hdmi.mmHeight > 0 {
			mmW, mmH = d.hdmi.mmWidth, d.hdmi.mmHeight
		}
		t.Matrix = reorientMatrix(t.Region, t.Rotation, t.HFlip, c.lcdXPY, sinkW, sinkH, mmW, mmH)
		t.Scaling = t.Rotation != 0 || t.HFlip ||
			sinkW != t.Region.W || sinkH != t.Region.H

	default:
		t.Region = c.mirrorRegion()
		t.Matrix = reorientMatrix(t.Region, t.Rotation, t.HFlip, c.lcdXPY, cfg.XRes, cfg.YRes, 0, 0)
		t.Scaling = t.Rotation != 0 || t.HFlip ||
			cfg.XRes != t.Region.W || cfg.YRes != t.Region.H
	}

	d.updateTransform = false
	return nil
}
