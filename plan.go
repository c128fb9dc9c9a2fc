package hwc

import "github.com/godss/hwc/dss"

// FrameContents is one display's layer list for a frame. The caller owns
// the slice; Prepare annotates each layer's Composition and Hints in place
// and Commit reads the framebuffer target's buffer from it.
type FrameContents struct {
	Layers []*Layer
}

// ResourceBudget is one display's share of the display engine for a frame,
// fixed before planning starts.
type ResourceBudget struct {
	// OverlayIxBase is the first hardware pipeline granted to this
	// display. Pipelines are handed out contiguously from the base.
	OverlayIxBase int

	// WantedOverlays is the share this display would claim under
	// contention, used to decide whether a starved display should ask
	// for the frame to be replanned.
	WantedOverlays int

	// AvailOverlays is the number of pipelines actually granted.
	AvailOverlays int

	// ScalingOverlays is how many of the granted pipelines can scale.
	ScalingOverlays int

	// UsedOverlays is the number of pipelines the plan consumed.
	UsedOverlays int

	// TilerSlotBytes is this display's share of 1D tiler fetch space.
	TilerSlotBytes int
}

// Plan is the outcome of planning one display's frame.
type Plan struct {
	Budget ResourceBudget

	// Comp is the composition Commit submits to the controller.
	Comp dss.Composition

	// Buffers holds the scanout sources Comp references by index. A nil
	// entry is the framebuffer slot, filled in at Commit time.
	Buffers []*Buffer

	// UseGPU reports that the layers left at CompositionGPU must be
	// composited into the framebuffer before Commit.
	UseGPU bool

	// SwapRB is the red/blue swap programmed on the frame's manager so
	// BGR-ordered buffers scan out correctly.
	SwapRB bool

	blitActive bool

	// fbSlot is the Buffers index reserved for the framebuffer target,
	// -1 when the frame has none.
	fbSlot int
}

// reset clears the per-frame parts of the plan, keeping the budget the
// allocator granted.
func (p *Plan) reset(syncID uint32) {
	p.Comp = dss.Composition{SyncID: syncID, Mode: dss.ModeDisplay}
	p.Buffers = p.Buffers[:0]
	p.UseGPU = false
	p.SwapRB = false
	p.blitActive = false
	p.fbSlot = -1
}
