package hwc

import "github.com/godss/hwc/dss"

func divRoundUp(n, d int) int {
	return (n + d - 1) / d
}

// canScale reports whether the scaler can fetch a srcW x srcH source and
// produce a dstW x dstH window against the given display. is2D selects the
// 2D tiler decimation limits used for NV12 sources. pixClkKHz is the pixel
// clock of the target timings; zero means a manual-update panel with no
// clock-derived limits.
func canScale(srcW, srcH, dstW, dstH int, is2D bool, info *dss.DisplayInfo, limits *dss.PlatformLimits, pixClkKHz int) bool {
	fclk := limits.FetchClockKHz

	xDecim := limits.MaxXDecim1D
	yDecim := limits.MaxYDecim1D
	if is2D {
		xDecim = limits.MaxXDecim2D
		yDecim = limits.MaxYDecim2D
	}
	minSrcW := divRoundUp(srcW, xDecim)
	minSrcH := divRoundUp(srcH, yDecim)

	// Narrow destinations misrender on DSI video-mode panels. The TV path
	// does not have the erratum.
	if info.Channel != dss.ChannelDigit && dstW < limits.MinWidth {
		return false
	}

	// Vertical downscale beyond 4x shows artifacts even with decimation.
	if dstH*4 < srcH {
		return false
	}
	if dstH*limits.MaxDownscale < minSrcH {
		return false
	}

	// Manual-update panels have no pixel clock and no clock-based limits.
	if pixClkKHz == 0 {
		return !(dstW*limits.MaxDownscale < minSrcW)
	}

	// Horizontal downscale is kept well below the theoretical limit.
	if dstW*4 < srcW {
		return false
	}

	if fclk > pixClkKHz*limits.MaxDownscale {
		fclk = pixClkKHz * limits.MaxDownscale
	}
	// Small sources need an integer fetch-to-pixel clock ratio.
	if srcW < limits.IntegerScaleRatioLimit {
		fclk = fclk / pixClkKHz * pixClkKHz
	}
	if dstW*fclk < minSrcW*pixClkKHz {
		return false
	}

	return true
}

// canScaleLayer checks the layer's crop-to-frame scaling against the primary
// panel. Scaling feasibility is judged on the primary alone; an external
// sink rescales the whole frame, not individual layers.
func (c *Compositor) canScaleLayer(layer *Layer) bool {
	srcW, srcH := layer.sourceSize()
	dstW := layer.DisplayFrame.Dx()
	dstH := layer.DisplayFrame.Dy()

	primary := c.displays[0]
	if primary == nil {
		return false
	}
	return canScale(srcW, srcH, dstW, dstH, layer.isNV12(), &primary.Info, &c.limits, primary.Info.Timings.PixClockKHz)
}
