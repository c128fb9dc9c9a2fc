package hwc

import (
	"time"

	"github.com/godss/hwc/geom"
)

// BlitPolicy selects how the 2D blitter participates in composition.
type BlitPolicy uint8

const (
	// BlitDisabled keeps the blitter out of composition entirely.
	BlitDisabled BlitPolicy = iota
	// BlitDefault offers the blitter the layers that would otherwise go
	// to the GPU.
	BlitDefault
	// BlitAll routes every layer through the blitter.
	BlitAll
)

func (p BlitPolicy) String() string {
	switch p {
	case BlitDisabled:
		return "disabled"
	case BlitDefault:
		return "default"
	case BlitAll:
		return "all"
	}
	return "unknown"
}

// MirrorOptions controls how an external sink mirrors the primary display.
type MirrorOptions struct {
	Enabled bool

	// Rotation is the number of extra quarter turns, clockwise, applied
	// on the way to the sink.
	Rotation int
	HFlip    bool

	// Region is the portion of the primary frame to mirror. An empty
	// region mirrors the whole active config.
	Region geom.Rect
}

// Policy carries the composition tunables. The zero value is usable but
// DefaultPolicy matches shipping behavior.
type Policy struct {
	// RGBOrder enforces a consistent component order across a frame:
	// layers whose order disagrees with the frame's manager setting go to
	// the GPU instead.
	RGBOrder bool

	// NV12Only restricts overlays to NV12 layers whenever the GPU is
	// compositing the rest of the frame.
	NV12Only bool

	Blit BlitPolicy

	// UpscaledNV12Limit is the upscale factor beyond which an NV12 layer
	// keeps its overlay even when the rest of the frame falls back to
	// the GPU. GPU-upscaled video shows sampling artifacts.
	UpscaledNV12Limit float64

	// IdleTimeout is how long the screen must stay unchanged before
	// composition collapses onto the GPU to free the display engine.
	// Zero disables idle detection.
	IdleTimeout time.Duration

	// AvoidModeChange prefers the currently programmed video mode when a
	// new mirror resolution is scored, accepting scaling over a mode
	// switch.
	AvoidModeChange bool

	// PrimaryRotation is the fixed quarter-turn orientation of the
	// primary panel relative to scanout, for boards that mount the panel
	// rotated.
	PrimaryRotation int

	// ResetPrimary runs the primary display through an empty composition
	// and a blank cycle before the first committed frame, for boards
	// whose bootloader leaves the controller in an unknown state.
	ResetPrimary bool

	Mirror MirrorOptions
}

// DefaultPolicy returns the tunables used in production builds.
func DefaultPolicy() Policy {
	return Policy{
		RGBOrder:          true,
		UpscaledNV12Limit: 2,
		IdleTimeout:       250 * time.Millisecond,
		AvoidModeChange:   true,
		Mirror:            MirrorOptions{Enabled: true},
	}
}
