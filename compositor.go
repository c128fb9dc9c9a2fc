package hwc

import (
	"fmt"
	"sync"
	"time"

	"github.com/godss/hwc/dss"
)

// Compositor decides, frame by frame, which layers scan out on overlay
// pipelines and which fall back to GPU composition, across the primary
// panel, an optional external sink and an optional capture-backed virtual
// display.
//
// One Compositor drives one display controller. Prepare plans a frame,
// Commit submits it; both serialize on an internal mutex, and every
// collaborator call is made with that mutex held.
type Compositor struct {
	mu sync.Mutex

	driver    Driver
	blitter   Blitter
	writeback Writeback
	allocator BufferAllocator
	events    EventSource
	listener  FrameListener

	policy Policy
	limits dss.PlatformLimits

	displays [MaxDisplays]*Display

	prev PreviousFrameStats

	// forceGPU steers whole frames onto the GPU while the screen idles,
	// counting down one per committed frame.
	forceGPU int

	syncID uint32

	// lcdXPY is the primary panel's pixel aspect, x size over y size.
	lcdXPY float64

	// posted wakes the event loop after a commit so the idle timer
	// starts over.
	posted chan struct{}

	didReset bool
	fps      fpsCounter
}

// NewCompositor probes the driver, attaches the primary display and leaves
// the engine ready for its first frame. The event loop is separate; start
// it with Run when hotplug, vsync forwarding or idle detection is wanted.
func NewCompositor(driver Driver, opts ...Option) (*Compositor, error) {
	if driver == nil {
		return nil, fmt.Errorf("hwc: nil driver")
	}

	c := &Compositor{
		driver: driver,
		policy: DefaultPolicy(),
		posted: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	limits, err := driver.Limits()
	if err != nil {
		return nil, fmt.Errorf("hwc: query platform limits: %w", err)
	}
	c.limits = limits

	if l := c.policy.UpscaledNV12Limit; l < 0 || l > 2048 {
		Logger().Warn("invalid upscaled nv12 limit, using 2", "limit", l)
		c.policy.UpscaledNV12Limit = 2
	}

	if err := c.initPrimaryDisplay(); err != nil {
		return nil, err
	}

	// The external connector may already be occupied at startup. Without
	// an event source the engine assumes an unplugged start.
	connected := false
	if c.events != nil {
		connected = c.events.Connected()
	}
	c.handleHotplug(connected)

	Logger().Info("compositor ready",
		"rgbOrder", c.policy.RGBOrder, "nv12Only", c.policy.NV12Only)

	if c.writeback != nil {
		if err := c.writeback.Open(); err != nil {
			return nil, fmt.Errorf("hwc: open writeback: %w", err)
		}
	}

	return c, nil
}

// nextSyncID hands out frame identifiers, one per planned composition.
func (c *Compositor) nextSyncID() uint32 {
	id := c.syncID
	c.syncID++
	return id
}

// Policy returns the composition tunables currently in effect.
func (c *Compositor) Policy() Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// SetPolicy swaps the composition tunables. The change takes effect with
// the next Prepare; the event loop keeps the idle timeout it started with.
func (c *Compositor) SetPolicy(p Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.UpscaledNV12Limit < 0 || p.UpscaledNV12Limit > 2048 {
		Logger().Warn("invalid upscaled nv12 limit, using 2",
			"limit", p.UpscaledNV12Limit)
		p.UpscaledNV12Limit = 2
	}
	c.policy = p
}

// Prepare plans a frame. contents holds one layer list per display slot;
// a nil entry skips that display. Prepare annotates every layer with its
// Composition verdict and builds each display's Plan for Commit. The
// first error is returned, but planning continues across displays.
func (c *Compositor) Prepare(contents []*FrameContents) error {
	if len(contents) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.detectVirtualDisplays(contents)
	c.setDisplayContents(contents)

	var err error
	for ix := range contents {
		if !c.activeDisplay(ix) {
			continue
		}
		d := c.displays[ix]

		if d.updateTransform {
			if terr := c.setupDisplayTransform(d); terr != nil && err == nil {
				err = terr
			}
		}

		// A mirroring display shows the primary's layers, so it is
		// measured against them.
		fc := d.contents
		if c.mirroring(ix) {
			fc = c.displays[DisplayPrimary].contents
		}
		c.gatherStatistics(d, fc)
	}

	c.reserveOverlays()

	if c.blitter != nil {
		c.blitter.Reset()
	}

	for ix := range contents {
		if contents[ix] == nil {
			continue
		}
		if perr := c.prepareDisplay(ix); perr != nil && err == nil {
			err = perr
		}
	}

	// With no external sink attached there is nothing left to drain;
	// stale clone counts must not keep shrinking the primary's share.
	if c.externalIx() < 0 {
		c.prev.ExternalOverlays = 0
	}

	return err
}

// Commit submits the compositions planned by the last Prepare. contents
// must be the same lists: the framebuffer target's buffer is read now,
// after the GPU composition pass has been queued into it. A nil entry
// pauses composition for that display without error.
func (c *Compositor) Commit(contents []*FrameContents) error {
	if len(contents) == 0 {
		Logger().Debug("commit with empty display list")
		return nil
	}

	c.mu.Lock()

	if c.policy.ResetPrimary && !c.didReset {
		c.resetPrimaryDisplay()
		c.didReset = true
	}

	invalidate := false
	var err error

	for ix := range contents {
		if dispErr := c.commitDisplay(ix, contents[ix], &invalidate); dispErr != nil && err == nil {
			err = dispErr
		}
	}

	// Tell the event loop a frame went out so the idle timer re-arms.
	select {
	case c.posted <- struct{}{}:
	default:
	}

	if c.forceGPU > 0 {
		c.forceGPU--
	}

	listener := c.listener
	c.mu.Unlock()

	if invalidate && listener != nil {
		listener.Invalidate()
	}

	return err
}

func (c *Compositor) commitDisplay(ix int, fc *FrameContents, invalidate *bool) error {
	if !c.validDisplay(ix) {
		if fc != nil {
			return fmt.Errorf("hwc: display %d: %w", ix, ErrInvalidDisplay)
		}
		return nil
	}

	d := c.displays[ix]
	plan := &d.plan

	if ix != DisplayPrimary {
		b := &plan.Budget
		// A starved secondary display asks for the frame to be planned
		// again once pipelines free up.
		if b.WantedOverlays > 0 && b.AvailOverlays < b.WantedOverlays &&
			(d.stats.Protected > 0 || b.AvailOverlays == 0) {
			*invalidate = true
		}
	}

	if c.mirroring(ix) {
		// The mirror rides on the primary's composition.
		return nil
	}

	if fc == nil {
		return nil
	}

	if plan.UseGPU {
		var fb *Buffer
		if d.stats.Framebuffer > 0 && len(fc.Layers) > 0 {
			// The target sits last in the list. Its buffer is bound
			// here rather than at Prepare, once the GPU has a frame
			// queued into it.
			fb = fc.Layers[len(fc.Layers)-1].Buffer
		}
		if fb == nil {
			Logger().Error("no buffer provided for gpu composition", "display", ix)
			return fmt.Errorf("hwc: display %d: no framebuffer target buffer", ix)
		}
		if plan.fbSlot >= 0 && plan.fbSlot < len(plan.Buffers) {
			plan.Buffers[plan.fbSlot] = fb
		}
	}

	err := c.driver.Post(ix, &plan.Comp, plan.Buffers)

	if ix == DisplayPrimary {
		c.fps.frame(time.Now())
	}

	if extIx := c.externalIx(); extIx >= 0 && c.displays[extIx].Kind == KindVirtual {
		ext := c.displays[extIx]
		if (ix == extIx || (ix == DisplayPrimary && c.mirroring(extIx))) &&
			ext.capture.useWB && c.writeback != nil {
			var handle any
			if ext.capture.wbLayer.Buffer != nil {
				handle = ext.capture.wbLayer.Buffer.Handle
			}
			Logger().Debug("writeback capture started",
				"handle", handle, "sync", ext.capture.wbSyncID)
			c.writeback.CaptureStarted(handle, ext.capture.wbSyncID)
		}
	}

	if err != nil {
		Logger().Error("failed to post composition",
			"display", ix, "sync", plan.Comp.SyncID, "error", err,
			"state", c.dump())
		return fmt.Errorf("hwc: post composition %d on display %d: %w: %w",
			plan.Comp.SyncID, ix, ErrDriverRejected, err)
	}
	return nil
}

// fpsCounter tracks the primary display's frame rate for diagnostics.
type fpsCounter struct {
	frames int
	since  time.Time
}

func (f *fpsCounter) frame(now time.Time) {
	if f.since.IsZero() {
		f.since = now
	}
	f.frames++
	if d := now.Sub(f.since); d >= 2*time.Second {
		Logger().Debug("fps", "rate", float64(f.frames)/d.Seconds())
		f.frames = 0
		f.since = now
	}
}
