package hwc

import "github.com/godss/hwc/dss"

// Writeback is the capture consumer behind a virtual display. The engine
// asks it for a destination each frame and tells it when a capture has
// been submitted; everything downstream of the buffer is the consumer's
// business.
type Writeback interface {
	// Open prepares the capture path. Called once when the compositor
	// is created.
	Open() error

	// CaptureLayer returns the destination for this frame's capture as
	// a layer: its buffer receives the pixels, its frames say what to
	// capture where. ok is false when no destination is ready.
	CaptureLayer() (layer Layer, ok bool)

	// CaptureStarted reports that the capture into the given buffer
	// handle was submitted with the composition identified by syncID.
	CaptureStarted(handle any, syncID uint32)

	// CapturePending reports whether an earlier capture has not
	// completed yet.
	CapturePending() bool
}

// captureState is the writeback bookkeeping on a virtual display.
type captureState struct {
	wbMode   dss.WritebackMode
	useWB    bool
	wbLayer  Layer
	wbSyncID uint32
}

// decideCaptureMode picks direct display capture when the sink consumes
// exactly what the mirrored region shows; anything that needs scaling,
// cropping or reorienting goes memory to memory through the overlay pipes.
func decideCaptureMode(t *DisplayTransform, sinkW, sinkH int) dss.WritebackMode {
	if t.Rotation == 0 && !t.HFlip && sinkW == t.Region.W && sinkH == t.Region.H {
		return dss.WBCapture
	}
	return dss.WBMem2Mem
}

// setupWBCapture appends the writeback leg that feeds the virtual
// display's consumer. In capture mode it taps the primary manager's
// composed output; in memory-to-memory mode it reads back what the
// sink manager's overlays produce.
func (c *Compositor) setupWBCapture(d *Display) {
	primary := c.displays[DisplayPrimary]
	wb := d.capture

	plan := &d.plan
	if c.mirroring(d.ix) {
		plan = &primary.plan
	}
	comp := &plan.Comp

	wb.useWB = false
	if !d.Blanked && c.writeback != nil && !c.writeback.CapturePending() {
		wb.wbLayer, wb.useWB = c.writeback.CaptureLayer()
	}

	if !wb.useWB {
		// With no destination a memory-to-memory frame has nowhere to
		// go; the overlays staged on the sink manager must not run.
		if wb.wbMode == dss.WBMem2Mem {
			for i := range comp.Overlays {
				if comp.Overlays[i].Cfg.MgrIx == d.MgrIx {
					comp.Overlays[i].Cfg.Enabled = false
				}
			}
			Logger().Warn("writeback refused a frame, disabling mirror overlays",
				"display", d.ix)
		}
		return
	}

	mgrIx := d.MgrIx
	if wb.wbMode == dss.WBCapture {
		mgrIx = primary.MgrIx
	}

	var o dss.Overlay
	adjustOverlayToLayer(&o, &wb.wbLayer, 0) // z-order is meaningless for writeback
	o.Cfg.MgrIx = mgrIx
	o.Cfg.Ix = dss.PipeWriteback
	o.Cfg.WBSource = mgrIx
	o.Cfg.WBMode = wb.wbMode
	o.Addressing = dss.AddrLayer
	o.BufferIndex = len(plan.Buffers)
	plan.Buffers = append(plan.Buffers, wb.wbLayer.Buffer)

	if wb.wbMode == dss.WBMem2Mem {
		// The overlays already scaled into sink space; capture one to
		// one, oriented like the panel.
		o.Cfg.Crop = o.Cfg.Win
		o.Cfg.Rotation = primary.transform.Rotation
		if o.Cfg.Rotation&1 != 0 {
			o.Cfg.Crop.X, o.Cfg.Crop.Y = o.Cfg.Crop.Y, o.Cfg.Crop.X
			o.Cfg.Crop.W, o.Cfg.Crop.H = o.Cfg.Crop.H, o.Cfg.Crop.W
		}
	}

	comp.Mode = dss.ModeDisplayCapture
	comp.Overlays = append(comp.Overlays, o)

	wb.wbSyncID = comp.SyncID

	Logger().Debug("writeback capture staged",
		"display", d.ix, "mode", wb.wbMode, "sync", comp.SyncID)
}
