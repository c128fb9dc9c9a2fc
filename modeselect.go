package hwc

import (
	"fmt"

	"github.com/godss/hwc/dss"
	"github.com/godss/hwc/geom"
)

// modeScore ranks how well an HDMI mode suits a source resolution. Fields
// are compared in order; an earlier field beats everything after it.
type modeScore struct {
	// standard marks CEA modes carrying a declared picture aspect.
	standard bool
	// upscales is set when the content loses no pixels, with 1%
	// tolerance.
	upscales bool
	// keepsMode marks the mode already programmed on the sink, when
	// mode changes are to be avoided.
	keepsMode bool
	// scale is closeness to unscaled output, 16 meaning 1:1.
	scale int
	// areaFill is how much of the mode's raster the fitted content
	// covers, 16 meaning all of it.
	areaFill int
	// refreshOK is set when the mode refreshes at least as fast as the
	// content.
	refreshOK bool
	// refreshClose is closeness of the refresh rates, 240 meaning equal.
	refreshClose int
}

// betterThan reports a strictly better score. Ties keep the earlier
// candidate.
func (s modeScore) betterThan(o modeScore) bool {
	if s.standard != o.standard {
		return s.standard
	}
	if s.upscales != o.upscales {
		return s.upscales
	}
	if s.keepsMode != o.keepsMode {
		return s.keepsMode
	}
	if s.scale != o.scale {
		return s.scale > o.scale
	}
	if s.areaFill != o.areaFill {
		return s.areaFill > o.areaFill
	}
	if s.refreshOK != o.refreshOK {
		return s.refreshOK
	}
	return s.refreshClose > o.refreshClose
}

// scoreMode rates scaling a xres x yres source at the given refresh onto
// extXres x extYres of a modeXres x modeYres mode.
func scoreMode(xres, yres, refresh, extXres, extYres, modeXres, modeYres, modeRefresh int, standard, keepsMode bool) modeScore {
	area := xres * yres
	extArea := extXres * extYres
	modeArea := modeXres * modeYres

	s := modeScore{
		standard:  standard,
		keepsMode: keepsMode,
		upscales:  extXres >= xres*99/100 && extYres >= yres*99/100,
	}

	if extArea > area {
		s.scale = 16 * area / extArea
	} else {
		s.scale = 16 * extArea / area
	}

	s.areaFill = (16*extArea + modeArea>>1) / modeArea

	// Period-exact rates report one below the nominal value; 59 means
	// 60Hz, 29 means 30Hz.
	if modeRefresh%6 == 5 {
		modeRefresh++
	}

	s.refreshOK = modeRefresh >= refresh
	if modeRefresh > refresh {
		s.refreshClose = 240 * refresh / modeRefresh
	} else {
		s.refreshClose = 240 * modeRefresh / refresh
	}

	return s
}

// selectBestMode scores the sink's mode list against an xres x yres source
// with pixel aspect xpy, programs the winner if it differs from what is
// already set, and records the mode's aspect for later fitting. With no
// usable mode it falls back to the sink's native timings, failing only
// when even those cannot be scaled into.
func (c *Compositor) selectBestMode(d *Display, xres, yres int, xpy float64) error {
	hdmi := d.hdmi
	if hdmi == nil {
		return fmt.Errorf("hwc: display %d is not hdmi: %w", d.ix, ErrInvalidDisplay)
	}

	info := &d.Info
	if info.Timings.XRes*info.Timings.YRes == 0 || xres*yres == 0 {
		return fmt.Errorf("hwc: mode selection without dimensions: %w", ErrUnsupportedGeometry)
	}

	best := -1
	var bestScore modeScore

	for i := range info.Modes {
		mode := &info.Modes[i]
		modeXres := mode.XRes
		modeYres := mode.YRes
		extW := info.WidthMM
		extH := info.HeightMM

		if mode.Interlaced() {
			modeYres /= 2
		}

		switch {
		case mode.Flags&dss.FlagRatio4x3 != 0:
			extW, extH = 4, 3
		case mode.Flags&dss.FlagRatio16x9 != 0:
			extW, extH = 16, 9
		}

		if modeXres == 0 || modeYres == 0 {
			continue
		}

		extFBXres, extFBYres := geom.AspectFit(xres, yres, xpy, modeXres, modeYres, extW, extH)

		// Even 2D tiled buffers must scale into the candidate mode.
		if mode.PixClockKHz == 0 ||
			mode.VMode&^dss.VModeInterlaced != 0 ||
			!canScale(xres, yres, extFBXres, extFBYres, true, info, &c.limits, mode.PixClockKHz) {
			continue
		}

		standard := mode.Flags&(dss.FlagRatio4x3|dss.FlagRatio16x9) != 0
		keeps := hdmi.modeSet && hdmi.modeIx == i && hdmi.avoidModeChange

		score := scoreMode(xres, yres, defaultFPS, extFBXres, extFBYres,
			modeXres, modeYres, max(mode.Refresh, 1), standard, keeps)

		Logger().Debug("hdmi mode candidate",
			"index", i, "mode", mode.String(),
			"fitted", fmt.Sprintf("%dx%d", extFBXres, extFBYres))

		if score.betterThan(bestScore) {
			hdmi.mmWidth = extW
			hdmi.mmHeight = extH
			best = i
			bestScore = score
		}
	}

	if best >= 0 {
		Logger().Info("picked hdmi mode", "display", d.ix, "index", best, "mode", info.Modes[best].String())

		// Only reconfigure on change.
		if !hdmi.modeSet || hdmi.modeIx != best {
			if err := c.driver.SetVideoMode(d.MgrIx, info.Modes[best]); err != nil {
				return fmt.Errorf("hwc: program mode %s: %w", info.Modes[best], err)
			}
			hdmi.modeSet = true
			hdmi.modeIx = best
			d.Info.Timings = info.Modes[best]
		}
		return nil
	}

	hdmi.mmWidth = info.WidthMM
	hdmi.mmHeight = info.HeightMM

	extFBXres, extFBYres := geom.AspectFit(xres, yres, xpy,
		info.Timings.XRes, info.Timings.YRes, hdmi.mmWidth, hdmi.mmHeight)

	if info.Timings.PixClockKHz == 0 ||
		!canScale(xres, yres, extFBXres, extFBYres, true, info, &c.limits, info.Timings.PixClockKHz) {
		Logger().Warn("scaler cannot support hdmi cloning", "display", d.ix)
		return fmt.Errorf("hwc: no usable hdmi mode: %w", ErrUnsupportedGeometry)
	}

	return nil
}

// configurePrimaryHDMI reselects the primary sink's mode after a plug
// event on boards whose primary display is HDMI.
func (c *Compositor) configurePrimaryHDMI() error {
	primary := c.displays[DisplayPrimary]
	cfg := primary.config()

	if err := c.selectBestMode(primary, cfg.XRes, cfg.YRes, c.lcdXPY); err != nil {
		return err
	}
	primary.updateTransform = true
	return nil
}
