package hwc

// Option configures a Compositor during creation.
//
// Example:
//
//	// Driver only; layers the hardware cannot take go to the GPU.
//	c, err := hwc.NewCompositor(drv)
//
//	// Full wiring: blitter, writeback capture and hardware events.
//	c, err := hwc.NewCompositor(drv,
//	    hwc.WithBlitter(bl),
//	    hwc.WithWriteback(wb),
//	    hwc.WithEventSource(src),
//	    hwc.WithListener(flinger),
//	)
type Option func(*Compositor)

// WithPolicy sets the composition tunables the engine starts with.
// Without it the engine runs DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(c *Compositor) {
		c.policy = p
	}
}

// WithBlitter attaches a 2D blit engine. The Blit policy in Policy
// decides how it participates; without a blitter those policies are
// inert.
func WithBlitter(b Blitter) Option {
	return func(c *Compositor) {
		c.blitter = b
	}
}

// WithWriteback attaches the capture consumer that virtual displays feed.
// Without it, frame contents supplied for the virtual slot are ignored.
func WithWriteback(w Writeback) Option {
	return func(c *Compositor) {
		c.writeback = w
	}
}

// WithBufferAllocator attaches the allocator used for rotation back
// buffers when a rotated frame is mirrored out of 1D tiled memory.
func WithBufferAllocator(a BufferAllocator) Option {
	return func(c *Compositor) {
		c.allocator = a
	}
}

// WithEventSource attaches the hardware event stream Run watches for
// hotplug and vsync.
func WithEventSource(s EventSource) Option {
	return func(c *Compositor) {
		c.events = s
	}
}

// WithListener attaches the receiver of invalidate, vsync and hotplug
// upcalls.
func WithListener(l FrameListener) Option {
	return func(c *Compositor) {
		c.listener = l
	}
}
