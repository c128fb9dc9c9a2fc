package hwc

import (
	"github.com/godss/hwc/dss"
	"github.com/godss/hwc/geom"
)

// setupOverlay fills an overlay with the defaults for scanning out a
// width x height buffer one-to-one. Callers then adjust crop, window and
// orientation for their source.
func setupOverlay(index int, format Format, blended bool, width, height int, ovl *dss.Overlay) {
	cfg := &ovl.Cfg

	cfg.Color = format.ColorMode(blended)
	if cfg.Color == dss.ColorNV12 {
		cfg.CConv = dss.CConvBT601Limited
	}

	cfg.Width = width
	cfg.Height = height
	cfg.Stride = format.Stride(width)

	cfg.Enabled = true
	cfg.GlobalAlpha = 255
	cfg.ZOrder = index

	cfg.Crop = geom.Rect{W: width, H: height}
	cfg.Win = geom.Rect{W: width, H: height}
}

// adjustOverlayToLayer configures an overlay to scan out the given layer at
// z-order index.
func adjustOverlayToLayer(ovl *dss.Overlay, layer *Layer, index int) {
	buf := layer.Buffer
	setupOverlay(index, buf.Format, layer.Blended(), buf.Width, buf.Height, ovl)

	cfg := &ovl.Cfg
	cfg.Rotation, cfg.Mirror = layer.Transform.RotationMirror()
	cfg.PreMultAlpha = layer.Blending == BlendPremult

	cfg.Win = geom.FromBounds(layer.DisplayFrame)
	cfg.Crop = geom.FromBounds(layer.SourceCrop)
}

// adjustOverlayToDisplay rewrites an overlay configured in composition
// space so it scans out correctly through the display's output transform.
// An overlay that falls entirely outside the display's region is disabled.
func adjustOverlayToDisplay(d *Display, ovl *dss.Overlay) {
	t := &d.transform
	cfg := &ovl.Cfg

	if err := geom.ClipToRegion(&cfg.Crop, &cfg.Win, t.Region, cfg.Rotation, cfg.Mirror); err != nil {
		cfg.Enabled = false
		return
	}

	cfg.Win = t.Matrix.TransformRect(cfg.Win)

	// The output rotation composes with the overlay's own; a mirrored
	// source rotates the other way.
	if cfg.Mirror {
		cfg.Rotation -= t.Rotation
	} else {
		cfg.Rotation += t.Rotation
	}
	cfg.Rotation &= 3

	if t.HFlip {
		cfg.Mirror = !cfg.Mirror
	}
}
