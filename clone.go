package hwc

import (
	"fmt"

	"github.com/godss/hwc/dss"
)

// cloneOverlay duplicates the primary's overlay ix onto the external
// display ext. The clone takes a pipeline from the top of the range so it
// never collides with the primary's allocation, and shares the source
// overlay's buffer unless a rotation back buffer stands in for the
// framebuffer.
func (c *Compositor) cloneOverlay(ext *Display, ix int) error {
	primary := c.displays[DisplayPrimary]
	plan := &primary.plan
	comp := &plan.Comp

	if len(comp.Overlays) >= c.limits.MaxPipes {
		Logger().Error("cannot clone overlay, all pipelines in use",
			"overlay", ix, "used", len(comp.Overlays))
		return fmt.Errorf("hwc: clone overlay %d: %w", ix, ErrHardwareBusy)
	}

	extOvlIx := len(comp.Overlays) - plan.Budget.UsedOverlays

	o := comp.Overlays[ix]
	o.Cfg.Ix = c.limits.MaxPipes - 1 - extOvlIx
	o.Cfg.MgrIx = ext.MgrIx

	if back := ext.backBuffer(comp.SyncID); ix == 0 && back != nil && plan.UseGPU {
		// A reoriented framebuffer cannot be fetched twice from 1D
		// space; the clone scans out of the rotation back buffer
		// instead.
		o.Addressing = dss.AddrLayer
		o.BufferIndex = len(plan.Buffers)
		plan.Buffers = append(plan.Buffers, back)
	} else {
		o.Addressing = dss.AddrOverlay
		o.BufferIndex = ix
	}

	// Distinct z values keep the combined composition checkable.
	o.Cfg.ZOrder += plan.Budget.UsedOverlays

	adjustOverlayToDisplay(ext, &o)
	comp.Overlays = append(comp.Overlays, o)

	return nil
}

// mirrorComposition extends the primary's plan so the external display d
// shows the same frame. The sink's own layer list is never composited.
func (c *Compositor) mirrorComposition(d *Display) {
	primary := c.displays[DisplayPrimary]
	plan := &primary.plan

	// Nothing on the sink's own list goes through the GPU.
	if d.contents != nil {
		for _, layer := range d.contents.Layers {
			if layer.Composition == CompositionTarget {
				continue
			}
			layer.Composition = CompositionOverlay
		}
	}

	if primary.Blanked {
		return
	}

	if d.capture != nil && d.capture.wbMode == dss.WBCapture {
		c.setupWBCapture(d)
		return
	}

	if d.Blanked || (d.hdmi != nil && !d.hdmi.modeSet) {
		return
	}

	cloned := 0
	for ix := 0; ix < plan.Budget.UsedOverlays; ix++ {
		if err := c.cloneOverlay(d, ix); err != nil {
			break
		}
		cloned++
	}

	c.setupManager(d, plan)

	c.prev.ExternalOverlays = cloned

	if d.capture != nil && d.capture.wbMode == dss.WBMem2Mem {
		c.setupWBCapture(d)
	}
}
