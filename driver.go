package hwc

import "github.com/godss/hwc/dss"

// Driver is the display controller the compositor programs. Implementations
// wrap the kernel interface; tests substitute fakes.
//
// Post is the only per-frame call. The rest run at startup or on
// configuration changes. All methods are invoked with the compositor's
// frame lock held, so implementations need no locking of their own against
// the compositor.
type Driver interface {
	// Limits reports the controller's scaling and memory limits.
	// Queried once when the compositor is created.
	Limits() (dss.PlatformLimits, error)

	// DisplayInfo describes the sink on a controller display.
	DisplayInfo(ix int) (dss.DisplayInfo, error)

	// SetVideoMode programs new timings on a controller display.
	SetVideoMode(ix int, mode dss.VideoMode) error

	// Post atomically applies a composition to the hardware. buffers
	// holds the scanout sources that overlays reference by index.
	Post(disp int, comp *dss.Composition, buffers []*Buffer) error

	// Blank turns a controller display off or back on.
	Blank(ix int, blank bool) error
}

// BufferAllocator provides scanout-capable buffers for the compositor's own
// use. Mirroring a rotated frame onto an external sink needs intermediate
// buffers that no client supplies.
type BufferAllocator interface {
	AllocScanout(width, height int, format Format) (*Buffer, error)
	Free(b *Buffer) error
}
