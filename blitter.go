package hwc

// Blitter is an optional 2D engine that composites layers into the
// framebuffer ahead of scanout, sparing the GPU. The engine keeps
// incremental state across frames, so the compositor tells it when a frame
// starts and when queued work is abandoned.
type Blitter interface {
	// Reset marks the start of a new frame. Called once per Prepare
	// before any display is planned.
	Reset()

	// Blit composites the given layers into the scanout framebuffer.
	// It returns the extra scanout buffers its commands reference, and
	// ok false when the engine cannot handle this frame at all.
	Blit(layers []*Layer) (buffers []*Buffer, ok bool)

	// Release abandons work queued by Blit when the planner decides the
	// GPU composites this frame after all.
	Release()
}
