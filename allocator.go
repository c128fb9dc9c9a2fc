package hwc

import "github.com/godss/hwc/dss"

// PreviousFrameStats carries the pipeline counts of the last committed
// frame. Pipelines cannot hop between displays atomically: one freed on a
// display only becomes usable elsewhere once its disable has taken effect,
// so this frame's grants are bounded by last frame's usage.
type PreviousFrameStats struct {
	InternalOverlays int
	ExternalOverlays int
}

// reserveOverlays divides the hardware pipelines and the tiler fetch space
// between the attached displays before any of them plans its frame.
func (c *Compositor) reserveOverlays() {
	primary := c.displays[DisplayPrimary]

	base := dss.PipeGFX
	maxOverlays := c.limits.MaxPipes
	nonScaling := c.limits.NonScalingPipes

	// A scaled or rotated framebuffer cannot go through GFX.
	if primary.transform.Scaling {
		base = dss.PipeVideo1
		maxOverlays -= nonScaling
		nonScaling = 0
	}

	maxPrimary := maxOverlays - c.prev.ExternalOverlays
	maxExternal := maxOverlays - c.prev.InternalOverlays

	pb := &primary.plan.Budget
	pb.TilerSlotBytes = c.limits.TilerSlotBytes
	pb.OverlayIxBase = base
	pb.WantedOverlays = maxOverlays
	pb.AvailOverlays = maxPrimary
	pb.ScalingOverlays = pb.AvailOverlays - nonScaling
	pb.UsedOverlays = 0

	extIx := c.externalIx()
	isMirroring := c.mirroring(extIx)

	if c.prev.ExternalOverlays > 0 || (extIx >= 0 && !isMirroring) {
		// Tiler fetch space is shared when two displays compose.
		pb.TilerSlotBytes /= 2
	}

	if extIx < 0 {
		return
	}

	ext := c.displays[extIx]

	if ext.Kind == KindVirtual {
		if isMirroring {
			cfg := ext.config()
			ext.capture.wbMode = decideCaptureMode(&ext.transform, cfg.XRes, cfg.YRes)
		} else {
			ext.capture.wbMode = dss.WBMem2Mem
		}

		// Direct capture taps the primary's manager output and needs no
		// pipelines of its own.
		if ext.capture.wbMode == dss.WBCapture {
			return
		}
	}

	// The primary must keep an overlay for the framebuffer plus one per
	// protected layer; protected content cannot go through the GPU.
	minPrimary := min(1+primary.stats.Protected, maxOverlays)

	pb.WantedOverlays = max(maxOverlays/2, minPrimary)
	pb.AvailOverlays = min(maxPrimary, pb.WantedOverlays)

	// The external share is granted here but may not be usable this
	// frame; the first external composition can lag one frame while the
	// pipes it needs are still draining.
	eb := &ext.plan.Budget
	eb.TilerSlotBytes = c.limits.TilerSlotBytes - pb.TilerSlotBytes
	eb.WantedOverlays = maxOverlays - pb.WantedOverlays
	eb.AvailOverlays = min(maxExternal, eb.WantedOverlays)
	eb.ScalingOverlays = eb.AvailOverlays
	eb.UsedOverlays = 0
	eb.OverlayIxBase = c.limits.MaxPipes - eb.AvailOverlays

	if isMirroring && eb.AvailOverlays > 0 && pb.AvailOverlays > eb.AvailOverlays {
		// Everything planned on the primary must also fit on the mirror
		// sink, though never below the primary's own minimum. Some
		// overlays may then fail to clone.
		pb.AvailOverlays = max(minPrimary, eb.AvailOverlays)
	}
}
