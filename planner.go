package hwc

import (
	"fmt"

	"github.com/godss/hwc/dss"
)

// mirrorConstraints folds a mirror sink's constraints into the primary's
// planning: what lands on the primary's pipes must also survive the trip
// out.
func (c *Compositor) mirrorConstraints(d *Display) (tform, onTV bool) {
	tform = d.transform.Rotation != 0 || d.transform.HFlip
	onTV = d.Kind == KindHDMI

	if d.ix == DisplayPrimary {
		if m := c.mirrorTarget(); m != nil {
			tform = tform || m.transform.Rotation != 0 || m.transform.HFlip
			onTV = onTV || m.Kind == KindHDMI
		}
	}
	return tform, onTV
}

// canRenderLayer reports whether a pipeline can scan this layer out on this
// display under the frame's manager settings.
func (c *Compositor) canRenderLayer(d *Display, layer *Layer) bool {
	if !c.validLayer(layer) {
		return false
	}

	tform, onTV := c.mirrorConstraints(d)
	format := layer.Buffer.Format

	// Only 2D tiled NV12 buffers can be reoriented on the way out.
	if tform && !layer.isNV12() {
		return false
	}
	if c.policy.NV12Only && d.plan.UseGPU && !layer.isNV12() {
		return false
	}
	if !c.canScaleLayer(layer) {
		return false
	}

	// Component order must agree with the manager's swap setting.
	mismatch := format.BGROrder()
	if d.plan.SwapRB {
		mismatch = format.RGBOrder()
	}
	if mismatch && c.policy.RGBOrder {
		return false
	}

	// The TV manager cannot swap; BGR never displays there.
	if onTV && format.BGROrder() {
		return false
	}

	return true
}

// canRenderAllLayers decides whether the whole frame fits on overlay
// pipelines, leaving the GPU idle.
func (c *Compositor) canRenderAllLayers(d *Display) bool {
	stats := &d.stats
	budget := &d.plan.Budget
	tform, onTV := c.mirrorConstraints(d)

	return c.forceGPU == 0 &&
		stats.Count > 0 &&
		stats.Count <= budget.AvailOverlays &&
		stats.Composable == stats.Count &&
		stats.Scaled <= budget.ScalingOverlays &&
		stats.NV12 <= budget.ScalingOverlays &&
		stats.Mem1D <= budget.TilerSlotBytes &&
		(!tform || stats.NV12 == stats.Count) &&
		(stats.BGR == 0 || (stats.RGB == 0 && !onTV) || !c.policy.RGBOrder) &&
		(!c.policy.NV12Only || (stats.BGR == 0 && stats.RGB == 0))
}

// setupManager appends the display's manager settings to the plan's
// composition.
func (c *Compositor) setupManager(d *Display, plan *Plan) {
	plan.Comp.Managers = append(plan.Comp.Managers, dss.ManagerConfig{
		Ix:            d.MgrIx,
		AlphaBlending: true,
		SwapRB:        plan.SwapRB && d.Kind != KindHDMI,
	})
}

// setupFramebuffer configures overlay slot 0 to scan out the display's
// framebuffer, the composited output of the GPU or blitter. blitBufs is
// the blitter's buffer list when it produced this frame, destination
// first.
func (c *Compositor) setupFramebuffer(d *Display, ovlIx, zorder int, blitBufs []*Buffer) {
	plan := &d.plan
	cfg := d.config()
	fb := &plan.Comp.Overlays[0]

	setupOverlay(zorder, d.FBFormat, true, cfg.XRes, cfg.YRes, fb)
	fb.Cfg.MgrIx = d.MgrIx
	fb.Cfg.Ix = ovlIx
	fb.Cfg.PreMultAlpha = true

	if plan.UseGPU {
		// The GPU renders after planning; leave an empty slot to fill
		// at commit.
		fb.Addressing = dss.AddrFramebuffer
		fb.BufferIndex = len(plan.Buffers)
		plan.fbSlot = fb.BufferIndex
		plan.Buffers = append(plan.Buffers, nil)
	} else {
		// The blit destination goes in front of the scanout list; the
		// existing references shift past it.
		fb.Addressing = dss.AddrLayer
		fb.BufferIndex = 0
		overlays := plan.Comp.Overlays
		for i := 1; i < len(overlays); i++ {
			if overlays[i].Addressing == dss.AddrLayer {
				overlays[i].BufferIndex++
			}
		}
		plan.Buffers = append([]*Buffer{blitBufs[0]}, plan.Buffers...)
	}
}

// markBlitted reassigns the layers the blitter composited so the caller
// renders nothing. Skipped layers stay with the caller.
func markBlitted(layers []*Layer) {
	for _, layer := range layers {
		if layer.Composition == CompositionGPU && !layer.Skip {
			layer.Composition = CompositionOverlay
		}
	}
}

// prepareDisplay plans one display's frame: it decides which layers get
// overlay pipelines, whether the GPU or blitter composites the rest, and
// builds the composition Commit will submit.
func (c *Compositor) prepareDisplay(ix int) error {
	if !c.validDisplay(ix) {
		return fmt.Errorf("hwc: display %d: %w", ix, ErrInvalidDisplay)
	}
	if !c.activeDisplay(ix) {
		return nil
	}

	d := c.displays[ix]

	if c.mirroring(ix) {
		c.mirrorComposition(d)
		return nil
	}

	plan := &d.plan
	plan.reset(c.nextSyncID())
	comp := &plan.Comp
	stats := &d.stats
	layers := d.contents.Layers

	// Compositing hardware in priority order: blitter under the all
	// policy, then overlay pipelines, then blitter as GPU relief, then
	// the GPU.
	var blitBufs []*Buffer
	blitAll := false
	if c.policy.Blit == BlitAll && c.blitter != nil {
		if bufs, ok := c.blitter.Blit(layers); ok && len(bufs) > 0 {
			blitAll = true
			plan.blitActive = true
			blitBufs = bufs
			markBlitted(layers)
		}
	}

	switch {
	case blitAll:
		plan.UseGPU = false
		plan.SwapRB = false
	case c.canRenderAllLayers(d):
		plan.UseGPU = false
		plan.SwapRB = stats.BGR != 0
	default:
		plan.UseGPU = true
		plan.SwapRB = d.FBFormat.BGROrder()
	}
	if d.hdmi != nil {
		// The TV manager has no red/blue swap.
		plan.SwapRB = false
	}

	z := 0
	fbZ := -1
	if blitAll {
		fbZ = 0
		z++
	}
	scaledGFX := false
	ovlIx := plan.Budget.OverlayIxBase
	mem1DUsed := 0

	// GPU and blitter output need a pipeline of their own; reserve
	// overlay slot 0 for the framebuffer.
	needsFB := plan.UseGPU || blitAll
	if needsFB {
		comp.Overlays = append(comp.Overlays, dss.Overlay{})
		ovlIx++
	}

	if !blitAll {
		for _, layer := range layers {
			if layer.Composition != CompositionTarget &&
				len(comp.Overlays) < plan.Budget.AvailOverlays &&
				c.canRenderLayer(d, layer) &&
				(c.forceGPU == 0 ||
					// Protected and heavily upscaled video stay on
					// pipelines even when idling on the GPU.
					layer.Protected ||
					layer.upscaledNV12(c.policy.UpscaledNV12Limit)) &&
				mem1DUsed+layer.mem1D() <= plan.Budget.TilerSlotBytes &&
				// A transparent overlay cannot sit in the middle of the
				// framebuffer stack.
				!(layer.Blended() && fbZ >= 0) {

				mem1DUsed += layer.mem1D()
				layer.Composition = CompositionOverlay
				layer.Hints |= HintTripleBuffer
				// Clear the framebuffer under opaque overlays so stale
				// GPU output cannot bleed through.
				if plan.UseGPU && !layer.Blended() {
					layer.Hints |= HintClearFB
				}

				var o dss.Overlay
				adjustOverlayToLayer(&o, layer, z)
				o.Cfg.Ix = ovlIx
				o.Cfg.MgrIx = d.MgrIx
				o.Addressing = dss.AddrLayer
				o.BufferIndex = len(plan.Buffers)
				plan.Buffers = append(plan.Buffers, layer.Buffer)

				// GFX cannot scale. If it took a scaled layer, swap it
				// onto a later flat layer's pipe.
				if ovlIx == dss.PipeGFX {
					scaledGFX = layer.Scaled() || layer.isNV12()
				} else if scaledGFX && !layer.Scaled() && !layer.isNV12() {
					o.Cfg.Ix = comp.Overlays[0].Cfg.Ix
					comp.Overlays[0].Cfg.Ix = ovlIx
					scaledGFX = false
				}

				comp.Overlays = append(comp.Overlays, o)
				ovlIx++
				z++
			} else if plan.UseGPU {
				if fbZ < 0 {
					fbZ = z
					z++
				} else {
					// Lift the framebuffer above this layer by lowering
					// the overlays in between.
					for fbZ < z-1 {
						comp.Overlays[1+fbZ].Cfg.ZOrder--
						fbZ++
					}
				}
			}
		}
	}

	// Still scaling on GFX: move its layer to a free video pipe, or the
	// last one if nothing is free.
	if scaledGFX {
		if ovlIx < plan.Budget.AvailOverlays {
			comp.Overlays[0].Cfg.Ix = ovlIx
		} else {
			comp.Overlays[0].Cfg.Ix = c.limits.MaxPipes - 1
		}
	}

	if c.policy.Blit == BlitDefault && c.blitter != nil {
		// Keep the blitter's incremental state across consecutive
		// blitted frames; once a frame falls through to the GPU that
		// state is unreliable and queued work is dropped.
		if plan.UseGPU {
			if bufs, ok := c.blitter.Blit(layers); ok && len(bufs) > 0 {
				plan.UseGPU = false
				plan.blitActive = true
				blitBufs = bufs
				markBlitted(layers)
			}
		} else {
			c.blitter.Release()
		}
	}

	if needsFB {
		if fbZ < 0 {
			if stats.Count > 0 {
				Logger().Error("framebuffer z-order unassigned with layers present",
					"display", d.ix)
			}
			fbZ = z
			z++
		}
		c.setupFramebuffer(d, plan.Budget.OverlayIxBase, fbZ, blitBufs)
	}
	if plan.blitActive && len(blitBufs) > 1 {
		plan.Buffers = append(plan.Buffers, blitBufs[1:]...)
	}

	plan.Budget.UsedOverlays = len(comp.Overlays)
	if d.ix == DisplayPrimary {
		c.prev.InternalOverlays = plan.Budget.UsedOverlays
	} else {
		c.prev.ExternalOverlays = plan.Budget.UsedOverlays
	}

	if d.transform.Scaling {
		for i := range comp.Overlays {
			adjustOverlayToDisplay(d, &comp.Overlays[i])
		}
	}

	if z != len(comp.Overlays) || len(comp.Overlays) > c.limits.MaxPipes {
		Logger().Error("z-order budget mismatch",
			"display", d.ix, "zlayers", z, "overlays", len(comp.Overlays))
	}
	if err := comp.Validate(); err != nil {
		Logger().Error("inconsistent composition", "display", d.ix, "error", err)
	}

	c.setupManager(d, plan)

	if d.Kind == KindVirtual {
		c.setupWBCapture(d)
	}

	// A blanked or unconfigured display posts an empty composition,
	// which clears whatever it was showing.
	if d.Blanked || (d.hdmi != nil && !d.hdmi.modeSet) {
		comp.Overlays = comp.Overlays[:0]
	}

	return nil
}
