// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package dss

// PlatformLimits are the scaling and memory capabilities of the display
// controller, queried once from the driver and treated as constant.
type PlatformLimits struct {
	// MaxPipes is the number of usable overlay pipelines,
	// NonScalingPipes of which cannot scale (the GFX pipeline).
	MaxPipes        int
	NonScalingPipes int

	// MinWidth is the narrowest output window the LCD outputs accept.
	// The digital output has no such restriction.
	MinWidth int

	// MaxDownscale bounds the downscale ratio after decimation. Fetch
	// decimation differs between 1D and 2D tiled buffers.
	MaxDownscale int
	MaxXDecim1D  int
	MaxYDecim1D  int
	MaxXDecim2D  int
	MaxYDecim2D  int

	// IntegerScaleRatioLimit is the source width under which the fetch
	// clock must divide evenly into the pixel clock.
	IntegerScaleRatioLimit int

	// FetchClockKHz is the functional clock feeding the fetch engines.
	FetchClockKHz int

	// TilerSlotBytes is the size of one 1D tiled memory slot. Frames
	// address at most two slots; displays compete for them.
	TilerSlotBytes int

	// FBMemTiled2D reports that framebuffers already live in 2D tiled
	// memory, making rotation back-buffers unnecessary.
	FBMemTiled2D bool
}

// DefaultLimits returns conservative limits matching the common controller
// revision. Drivers report the real values; these serve tests and bring-up.
func DefaultLimits() PlatformLimits {
	return PlatformLimits{
		MaxPipes:               4,
		NonScalingPipes:        1,
		MinWidth:               2,
		MaxDownscale:           4,
		MaxXDecim1D:            16,
		MaxYDecim1D:            16,
		MaxXDecim2D:            4,
		MaxYDecim2D:            4,
		IntegerScaleRatioLimit: 360,
		FetchClockKHz:          170667,
		TilerSlotBytes:         16 << 20,
	}
}
