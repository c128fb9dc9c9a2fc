package hwc

import (
	"errors"
	"fmt"
	"time"

	"github.com/godss/hwc/dss"
	"github.com/godss/hwc/geom"
)

// Display slots. The engine drives at most one external sink next to the
// primary panel; a virtual display captures through writeback instead of a
// physical connector.
const (
	DisplayPrimary  = 0
	DisplayExternal = 1
	DisplayVirtual  = 2

	MaxDisplays = 3
)

const (
	lcdDefaultDPI  = 150
	hdmiDefaultDPI = 75
	defaultFPS     = 60
	inchToMM       = 25.4

	// Mirroring a rotated frame to a sink needs intermediate scanout
	// buffers, double buffered against the pipe.
	backBufferCount = 2
)

// Kind tells what is on the other end of a display slot.
type Kind uint8

const (
	KindPanel Kind = iota
	KindHDMI
	KindVirtual
)

func (k Kind) String() string {
	switch k {
	case KindPanel:
		return "panel"
	case KindHDMI:
		return "hdmi"
	case KindVirtual:
		return "virtual"
	}
	return "unknown"
}

// ContentMode says where a display's pixels come from.
type ContentMode uint8

const (
	// ContentMirror shows a copy of the primary display's frame.
	ContentMirror ContentMode = iota
	// ContentPresentation shows the display's own layer list.
	ContentPresentation
)

func (m ContentMode) String() string {
	switch m {
	case ContentMirror:
		return "mirror"
	case ContentPresentation:
		return "presentation"
	}
	return "unknown"
}

// Config is one selectable display configuration.
type Config struct {
	XRes, YRes int
	FPS        int
	XDPI, YDPI int
}

// VSyncPeriod returns the refresh interval of the config.
func (c Config) VSyncPeriod() time.Duration {
	if c.FPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.FPS)
}

// hdmiState tracks video mode selection on an HDMI sink.
type hdmiState struct {
	// modeSet reports that modeIx names the mode currently programmed on
	// the sink. The index alone is not enough: a disconnect forgets the
	// programmed mode while the cached mode list stays valid.
	modeSet bool
	modeIx  int

	// mmWidth and mmHeight hold the physical aspect of the selected
	// mode, used as the sink dimensions when fitting mirrored content.
	mmWidth, mmHeight int

	avoidModeChange bool
}

// Display is one attached sink together with the per-display engine state.
type Display struct {
	ix   int
	Kind Kind

	// MgrIx is the controller manager driving this display.
	MgrIx int

	Configs      []Config
	ActiveConfig int

	// Mode says whether the display presents its own layers or mirrors
	// the primary. Recomputed each frame from the supplied contents.
	Mode ContentMode

	// FBFormat is the pixel format of this display's framebuffer.
	FBFormat Format

	Blanked bool

	// Info is the controller's view of the attached sink.
	Info dss.DisplayInfo

	transform       DisplayTransform
	updateTransform bool

	contents *FrameContents
	stats    LayerStatistics
	plan     Plan

	hdmi    *hdmiState
	capture *captureState

	backBuffers [backBufferCount]*Buffer
}

// Index returns the display's slot.
func (d *Display) Index() int { return d.ix }

// Transform returns the output transform applied to this display's frame.
func (d *Display) Transform() DisplayTransform { return d.transform }

// Stats returns the layer statistics gathered by the last Prepare.
func (d *Display) Stats() LayerStatistics { return d.stats }

// Plan returns the composition plan built by the last Prepare.
func (d *Display) Plan() *Plan { return &d.plan }

// config returns the active configuration.
func (d *Display) config() *Config {
	return &d.Configs[d.ActiveConfig]
}

// backBuffer cycles through the mirror back buffers, one per in-flight
// frame.
func (d *Display) backBuffer(syncID uint32) *Buffer {
	return d.backBuffers[int(syncID)%backBufferCount]
}

// Display returns the display in the given slot.
func (c *Compositor) Display(ix int) (*Display, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ix < 0 || ix >= MaxDisplays || c.displays[ix] == nil {
		return nil, fmt.Errorf("hwc: display %d: %w", ix, ErrInvalidDisplay)
	}
	return c.displays[ix], nil
}

func (c *Compositor) validDisplay(ix int) bool {
	return ix >= 0 && ix < MaxDisplays && c.displays[ix] != nil
}

// activeDisplay reports whether the slot has a display with contents to
// compose this frame.
func (c *Compositor) activeDisplay(ix int) bool {
	return c.validDisplay(ix) && c.displays[ix].contents != nil
}

// externalIx returns the slot of the attached external sink, physical or
// virtual, or -1 when the primary is alone.
func (c *Compositor) externalIx() int {
	if c.displays[DisplayExternal] != nil {
		return DisplayExternal
	}
	if c.displays[DisplayVirtual] != nil {
		return DisplayVirtual
	}
	return -1
}

// mirroring reports whether the display in the given slot shows a mirror of
// the primary frame this frame.
func (c *Compositor) mirroring(ix int) bool {
	if ix == DisplayPrimary || !c.activeDisplay(ix) {
		return false
	}
	return c.displays[ix].Mode == ContentMirror
}

// mirrorTarget returns the external display currently mirroring the
// primary, or nil.
func (c *Compositor) mirrorTarget() *Display {
	ext := c.externalIx()
	if ext < 0 || !c.mirroring(ext) {
		return nil
	}
	return c.displays[ext]
}

func dpiFromMM(res, mm, def int) int {
	if mm <= 0 {
		return def
	}
	return int(float64(res)*inchToMM) / mm
}

func (c *Compositor) initPrimaryDisplay() error {
	info, err := c.driver.DisplayInfo(DisplayPrimary)
	if err != nil {
		return fmt.Errorf("hwc: query primary display: %w", err)
	}

	kind := KindPanel
	if info.Channel == dss.ChannelDigit {
		kind = KindHDMI
		Logger().Info("primary display is HDMI")
	}

	defDPI := lcdDefaultDPI
	if kind == KindHDMI {
		defDPI = hdmiDefaultDPI
	}

	d := &Display{
		ix:       DisplayPrimary,
		Kind:     kind,
		MgrIx:    0,
		Mode:     ContentPresentation,
		FBFormat: FormatRGBX8888,
		Info:     info,
		Configs: []Config{{
			XRes: info.Timings.XRes,
			YRes: info.Timings.YRes,
			FPS:  defaultFPS,
		}},
	}
	cfg := d.config()
	cfg.XDPI = dpiFromMM(cfg.XRes, info.WidthMM, defDPI)
	cfg.YDPI = dpiFromMM(cfg.YRes, info.HeightMM, defDPI)

	if kind == KindHDMI {
		d.hdmi = &hdmiState{avoidModeChange: true}
	}

	// Pixel aspect of the panel, carried into mode selection so content
	// keeps its shape on non-square sinks.
	c.lcdXPY = 1.0
	if info.WidthMM > 0 && info.HeightMM > 0 && cfg.XRes > 0 && cfg.YRes > 0 {
		c.lcdXPY = float64(info.WidthMM) / float64(cfg.XRes) /
			float64(info.HeightMM) * float64(cfg.YRes)
	}

	d.transform.Rotation = c.policy.PrimaryRotation & 3
	c.displays[DisplayPrimary] = d

	return nil
}

// resetPrimaryDisplay drops whatever the bootloader left on screen and runs
// the panel through a blank cycle so the first frame starts from a known
// state.
func (c *Compositor) resetPrimaryDisplay() {
	comp := dss.Composition{
		Mode:     dss.ModeDisplay,
		Managers: []dss.ManagerConfig{{Ix: 0}},
	}
	if err := c.driver.Post(DisplayPrimary, &comp, nil); err != nil {
		Logger().Warn("failed to remove bootloader image", "error", err)
	}

	if err := c.driver.Blank(DisplayPrimary, true); err != nil {
		Logger().Warn("blank primary failed", "error", err)
	}
	if err := c.driver.Blank(DisplayPrimary, false); err != nil {
		Logger().Warn("unblank primary failed", "error", err)
	}
}

// mirrorRegion returns the portion of the primary frame that mirroring
// sends out. An unset policy region means the whole active config.
func (c *Compositor) mirrorRegion() geom.Rect {
	if !c.policy.Mirror.Region.Empty() {
		return c.policy.Mirror.Region
	}
	primary := c.displays[DisplayPrimary]
	cfg := primary.config()
	return geom.Rect{W: cfg.XRes, H: cfg.YRes}
}

func (c *Compositor) addExternalDisplay() error {
	info, err := c.driver.DisplayInfo(DisplayExternal)
	if err != nil {
		return fmt.Errorf("hwc: query external display: %w", err)
	}

	region := c.mirrorRegion()
	d := &Display{
		ix:       DisplayExternal,
		Kind:     KindHDMI,
		MgrIx:    1,
		Mode:     ContentMirror,
		FBFormat: FormatRGBX8888,
		Info:     info,
		Configs: []Config{{
			XRes: region.W,
			YRes: region.H,
			FPS:  defaultFPS,
		}},
	}
	cfg := d.config()
	cfg.XDPI = dpiFromMM(cfg.XRes, info.WidthMM, hdmiDefaultDPI)
	cfg.YDPI = dpiFromMM(cfg.YRes, info.HeightMM, hdmiDefaultDPI)

	if info.Channel != dss.ChannelDigit {
		Logger().Warn("unknown type of external display is connected")
	}
	d.hdmi = &hdmiState{avoidModeChange: c.policy.AvoidModeChange}

	d.transform = DisplayTransform{
		Rotation: c.policy.Mirror.Rotation & 3,
		HFlip:    c.policy.Mirror.HFlip,
		Region:   region,
	}
	d.updateTransform = true

	if err := c.selectBestMode(d, region.W, region.H, c.lcdXPY); err != nil {
		return err
	}
	if err := c.allocateBackBuffers(d); err != nil {
		return err
	}

	c.displays[DisplayExternal] = d
	return nil
}

func (c *Compositor) removeExternalDisplay() {
	d := c.displays[DisplayExternal]
	if d == nil {
		return
	}
	c.freeBackBuffers(d)
	c.displays[DisplayExternal] = nil
}

// allocateBackBuffers sets up the intermediate scanout buffers used when a
// rotated frame is mirrored. With the framebuffer already in 2D tiled
// space the pipes rotate in place and no copies are needed.
func (c *Compositor) allocateBackBuffers(d *Display) error {
	if c.policy.Mirror.Rotation == 0 || c.limits.FBMemTiled2D {
		return nil
	}
	if c.allocator == nil {
		return errors.New("hwc: mirror rotation needs a buffer allocator")
	}

	primary := c.displays[DisplayPrimary].config()
	for i := range d.backBuffers {
		if d.backBuffers[i] != nil {
			return nil
		}
	}
	for i := range d.backBuffers {
		b, err := c.allocator.AllocScanout(primary.XRes, primary.YRes, FormatRGBX8888)
		if err != nil {
			c.freeBackBuffers(d)
			return fmt.Errorf("hwc: allocate mirror back buffers: %w: %w", ErrResourceExhausted, err)
		}
		d.backBuffers[i] = b
	}
	return nil
}

func (c *Compositor) freeBackBuffers(d *Display) {
	for i, b := range d.backBuffers {
		if b == nil {
			continue
		}
		if err := c.allocator.Free(b); err != nil {
			Logger().Warn("back buffer free failed", "error", err)
		}
		d.backBuffers[i] = nil
	}
}

// detectVirtualDisplays attaches or detaches the virtual display slot based
// on whether the caller supplied contents for it.
func (c *Compositor) detectVirtualDisplays(contents []*FrameContents) {
	var wanted *FrameContents
	if len(contents) > DisplayVirtual {
		wanted = contents[DisplayVirtual]
	}

	switch {
	case wanted != nil && c.displays[DisplayVirtual] == nil:
		c.addVirtualDisplay(wanted)
	case wanted == nil && c.displays[DisplayVirtual] != nil:
		c.removeVirtualDisplay()
	}
}

// addVirtualDisplay attaches a writeback-backed sink. Its resolution comes
// from the framebuffer target in the first frame, falling back to the
// mirror region.
func (c *Compositor) addVirtualDisplay(contents *FrameContents) {
	if c.writeback == nil {
		Logger().Warn("virtual display contents supplied but no writeback path")
		return
	}

	region := c.mirrorRegion()
	xres, yres := region.W, region.H
	for _, layer := range contents.Layers {
		if layer.Composition == CompositionTarget && layer.Buffer != nil {
			xres, yres = layer.Buffer.Width, layer.Buffer.Height
		}
	}

	d := &Display{
		ix:       DisplayVirtual,
		Kind:     KindVirtual,
		MgrIx:    2,
		Mode:     ContentMirror,
		FBFormat: FormatRGBX8888,
		Configs: []Config{{
			XRes: xres,
			YRes: yres,
			FPS:  defaultFPS,
			XDPI: hdmiDefaultDPI,
			YDPI: hdmiDefaultDPI,
		}},
	}
	d.capture = &captureState{}
	d.transform = DisplayTransform{
		Rotation: c.policy.Mirror.Rotation & 3,
		HFlip:    c.policy.Mirror.HFlip,
		Region:   region,
	}
	d.updateTransform = true

	c.displays[DisplayVirtual] = d
	Logger().Info("virtual display attached", "xres", xres, "yres", yres)
}

func (c *Compositor) removeVirtualDisplay() {
	c.displays[DisplayVirtual] = nil
	Logger().Info("virtual display detached")
}

// setDisplayContents stores the frame's layer lists and works out each
// display's content mode. A secondary display with its own layers presents
// them; one fed only a framebuffer target mirrors the primary if mirroring
// is allowed.
func (c *Compositor) setDisplayContents(contents []*FrameContents) {
	for ix := 0; ix < MaxDisplays; ix++ {
		d := c.displays[ix]
		if d == nil {
			continue
		}

		var fc *FrameContents
		if ix < len(contents) {
			fc = contents[ix]
		}
		d.contents = fc

		if ix == DisplayPrimary {
			d.Mode = ContentPresentation
			continue
		}

		own := false
		if fc != nil {
			for _, layer := range fc.Layers {
				if layer.Composition != CompositionTarget {
					own = true
					break
				}
			}
		}
		if own || !c.policy.Mirror.Enabled {
			d.Mode = ContentPresentation
		} else {
			d.Mode = ContentMirror
		}
	}
}

// Blank pauses or resumes composition to a display. The panel power state
// itself is managed outside the compositor; a blanked display just stops
// receiving compositions. Blanking the primary also stops a virtual sink,
// which never gets its own blank request.
func (c *Compositor) Blank(ix int, blank bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.validDisplay(ix) {
		return fmt.Errorf("hwc: display %d: %w", ix, ErrInvalidDisplay)
	}

	c.displays[ix].Blanked = blank

	if ix == DisplayPrimary {
		ext := c.externalIx()
		if ext >= 0 && c.displays[ext].Kind == KindVirtual {
			c.displays[ext].Blanked = blank
		}
	}

	Logger().Info("display blank", "display", ix, "blank", blank)
	return nil
}
