// Package hwc plans hardware display composition for overlay-based SoC
// display controllers.
//
// # Overview
//
// hwc is the decision engine between a window compositor and a display
// controller with a fixed set of overlay pipelines. Each frame it examines
// the layer lists of up to three displays, decides which layers the
// hardware scans out directly and which fall back to GPU composition,
// divides pipelines and tiled fetch memory between the displays, and emits
// one driver-ready composition descriptor per display.
//
// # Quick Start
//
//	import "github.com/godss/hwc"
//
//	// Wrap the display controller and open the engine.
//	c, err := hwc.NewCompositor(drv)
//
//	// Each frame: plan, compose the leftovers on the GPU, submit.
//	contents := []*hwc.FrameContents{{Layers: layers}}
//	err = c.Prepare(contents)
//	renderGPULayers(contents) // layers still marked CompositionGPU
//	err = c.Commit(contents)
//
// # Architecture
//
// The engine is organized into:
//   - Public API: Compositor, Display, Layer, Policy, collaborator
//     interfaces (Driver, Blitter, Writeback, EventSource)
//   - geom: affine window mapping and rotation-aware clipping
//   - dss: the plain-data descriptor model submitted to the driver
//
// Mirroring, HDMI mode selection, writeback capture and the idle GPU
// fallback all ride on the same per-frame planning pass; see Prepare.
//
// # Concurrency
//
// All frame operations serialize on an internal mutex. Run starts the
// event loop that handles hotplug, vsync forwarding and idle detection;
// it shares the same mutex and stops when its context is canceled.
package hwc

// Version information
const (
	// Version is the current version of the library
	Version = "1.2.0"

	// VersionMajor is the major version
	VersionMajor = 1

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
