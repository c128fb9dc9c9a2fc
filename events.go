package hwc

import (
	"context"
	"time"
)

// EventKind tells what a hardware event reports.
type EventKind uint8

const (
	// EventHotplug is a change of the external connector's plug state.
	EventHotplug EventKind = iota
	// EventVSync is a vertical sync pulse on the primary display.
	EventVSync
)

func (k EventKind) String() string {
	switch k {
	case EventHotplug:
		return "hotplug"
	case EventVSync:
		return "vsync"
	}
	return "unknown"
}

// Event is one notification from the display hardware.
type Event struct {
	Kind EventKind

	// Connected is the plug state carried by a hotplug event.
	Connected bool

	// Timestamp is the vsync time in nanoseconds.
	Timestamp int64
}

// EventSource feeds hardware events into Run. Implementations watch
// whatever the platform provides, kernel uevents or a vendor socket.
type EventSource interface {
	// Connected reports the external connector's plug state, read once
	// at startup before any events arrive.
	Connected() bool

	// Events returns the stream of hardware notifications. Run stops
	// watching once the channel is closed.
	Events() <-chan Event
}

// FrameListener receives the engine's upcalls. Calls are made without the
// frame mutex held, so implementations may call back into the engine.
type FrameListener interface {
	// Invalidate asks the client to compose and commit a fresh frame.
	Invalidate()

	// VSync reports a display's vertical sync, timestamped in
	// nanoseconds.
	VSync(disp int, timestamp int64)

	// Hotplug reports that the external display was attached or
	// detached.
	Hotplug(disp int, connected bool)
}

// Run drives the event loop: hotplug and vsync events from the source,
// and the idle timer that collapses composition onto the GPU when the
// screen stops changing. It blocks until ctx is canceled.
func (c *Compositor) Run(ctx context.Context) error {
	var events <-chan Event
	if c.events != nil {
		events = c.events.Events()
	}

	c.mu.Lock()
	idle := c.policy.IdleTimeout
	c.mu.Unlock()

	var timer *time.Timer
	var timeout <-chan time.Time
	if idle > 0 {
		timer = time.NewTimer(idle)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timeout:
			// The screen sat still for the whole idle window. Pulling
			// composition onto the GPU lets the unused pipelines power
			// down.
			invalidate := false
			if c.listener != nil {
				c.mu.Lock()
				invalidate = c.prev.InternalOverlays > 1 && c.forceGPU == 0
				if invalidate {
					c.forceGPU = 2
				}
				c.mu.Unlock()
			}
			if invalidate {
				Logger().Debug("idle, forcing gpu composition")
				c.listener.Invalidate()
				// The timer stays off until the next post re-arms it.
			} else {
				timer.Reset(idle)
			}

		case <-c.posted:
			if timer == nil {
				continue
			}
			c.mu.Lock()
			force := c.forceGPU
			c.mu.Unlock()
			if force == 0 {
				rearmTimer(timer, idle)
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch ev.Kind {
			case EventVSync:
				if c.listener != nil {
					c.listener.VSync(DisplayPrimary, ev.Timestamp)
				}
			case EventHotplug:
				c.hotplugEvent(ev.Connected)
			}
		}
	}
}

// rearmTimer restarts a timer that may be running or already fired.
func rearmTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// hotplugEvent applies a plug state change and makes the listener upcall
// it warrants.
func (c *Compositor) hotplugEvent(connected bool) {
	notifyHotplug, notifyInvalidate := c.handleHotplug(connected)

	if c.listener == nil {
		return
	}
	switch {
	case notifyHotplug:
		c.listener.Hotplug(DisplayExternal, connected)
	case notifyInvalidate:
		c.listener.Invalidate()
	}
}

// handleHotplug updates the display registry for a plug state change. It
// reports which upcall the change deserves: an external attach or detach
// warrants a hotplug notification, a primary mode change an invalidate,
// and a failed attach nothing at all.
func (c *Compositor) handleHotplug(connected bool) (notifyHotplug, notifyInvalidate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	primary := c.displays[DisplayPrimary]
	if primary != nil && primary.Kind == KindHDMI {
		Logger().Info("primary hdmi display plug changed", "connected", connected)
		if connected {
			if err := c.configurePrimaryHDMI(); err != nil {
				Logger().Warn("primary hdmi mode selection failed", "error", err)
			}
		} else {
			// The cached mode list survives a disconnect; the
			// programmed mode does not.
			primary.hdmi.modeSet = false
		}
		return false, true
	}

	if connected {
		if err := c.addExternalDisplay(); err != nil {
			Logger().Warn("external display attach failed", "error", err)
			c.removeExternalDisplay()
			return false, false
		}
	} else {
		c.removeExternalDisplay()
	}

	ext := c.displays[DisplayExternal]
	rotation, hflip, tv, mirroring := -1, false, false, false
	if ext != nil {
		rotation = ext.transform.Rotation * 90
		hflip = ext.transform.HFlip
		tv = ext.Kind == KindHDMI
		mirroring = ext.Mode == ContentMirror
	}
	Logger().Info("external display changed",
		"connected", connected, "mirroring", mirroring,
		"rotation", rotation, "hflip", hflip, "tv", tv)

	return true, false
}
