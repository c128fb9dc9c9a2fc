// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package dss

import (
	"fmt"

	"github.com/godss/hwc/geom"
)

// ColorMode is the pixel format an overlay pipeline fetches.
type ColorMode uint8

const (
	ColorNone ColorMode = iota
	ColorRGB16
	ColorXRGB32
	ColorARGB32
	ColorNV12
)

func (m ColorMode) String() string {
	switch m {
	case ColorNone:
		return "none"
	case ColorRGB16:
		return "rgb16"
	case ColorXRGB32:
		return "xrgb32"
	case ColorARGB32:
		return "argb32"
	case ColorNV12:
		return "nv12"
	default:
		return fmt.Sprintf("ColorMode(%d)", uint8(m))
	}
}

// Addressing tells the driver how to resolve an overlay's scanout buffer.
type Addressing uint8

const (
	// AddrLayer resolves BufferIndex against the frame's buffer list.
	AddrLayer Addressing = iota
	// AddrOverlay scans out the buffer of the overlay numbered BufferIndex.
	// Used for clones, which share the source overlay's buffer.
	AddrOverlay
	// AddrFramebuffer resolves BufferIndex against the frame's buffer list
	// like AddrLayer, but the slot holds the composition target, which is
	// filled in at commit time rather than at planning time.
	AddrFramebuffer
)

func (a Addressing) String() string {
	switch a {
	case AddrLayer:
		return "layer"
	case AddrOverlay:
		return "overlay"
	case AddrFramebuffer:
		return "framebuffer"
	default:
		return fmt.Sprintf("Addressing(%d)", uint8(a))
	}
}

// WritebackMode selects how the writeback pipe captures.
type WritebackMode uint8

const (
	// WBMem2Mem captures through memory with its own scaling pass.
	WBMem2Mem WritebackMode = iota
	// WBCapture taps the manager output directly, with no scaling.
	WBCapture
)

func (m WritebackMode) String() string {
	switch m {
	case WBMem2Mem:
		return "mem2mem"
	case WBCapture:
		return "capture"
	default:
		return fmt.Sprintf("WritebackMode(%d)", uint8(m))
	}
}

// ColorConv is a YUV to RGB conversion coefficient table in 3x3 fixed-point
// form, as the video pipelines consume it.
type ColorConv struct {
	RY, RCr, RCb int16
	GY, GCr, GCb int16
	BY, BCr, BCb int16
	FullRange    bool
}

// CConvBT601Limited holds the BT.601-5 limited-range coefficients used for
// all NV12 content.
var CConvBT601Limited = ColorConv{
	RY: 298, RCr: 409, RCb: 0,
	GY: 298, GCr: -208, GCb: -100,
	BY: 298, BCr: 0, BCb: 517,
}

// OverlayConfig is the register-level state of one overlay pipeline.
//
// Crop selects the fetched region in buffer coordinates, before rotation.
// Win places the output in display coordinates, after rotation. When
// Rotation is odd the two have swapped aspect.
type OverlayConfig struct {
	Width  int // full buffer width in pixels
	Height int // full buffer height in pixels
	Stride int // bytes per scanline

	Color        ColorMode
	CConv        ColorConv // YUV conversion, meaningful for ColorNV12
	PreMultAlpha bool
	GlobalAlpha  uint8

	Rotation int // clockwise quarter turns, 0..3
	Mirror   bool

	Crop geom.Rect
	Win  geom.Rect

	Ix      int // overlay pipeline, PipeGFX..PipeVideo3 or PipeWriteback
	ZOrder  int
	MgrIx   int // target overlay manager
	Enabled bool

	// Writeback fields, meaningful only when Ix == PipeWriteback.
	WBSource int // manager tapped in WBCapture mode
	WBMode   WritebackMode
}

// Overlay pairs a pipeline configuration with its buffer reference.
type Overlay struct {
	Cfg         OverlayConfig
	Addressing  Addressing
	BufferIndex int
}
