package hwc

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godss/hwc/dss"
)

type postRecord struct {
	disp    int
	comp    dss.Composition
	buffers []*Buffer
}

// fakeDriver records everything the compositor programs. Posted
// compositions are deep copied so later frames cannot rewrite them.
type fakeDriver struct {
	limits dss.PlatformLimits
	infos  map[int]dss.DisplayInfo

	posts  []postRecord
	modes  []dss.VideoMode
	blanks []bool

	postErr error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		limits: dss.DefaultLimits(),
		infos: map[int]dss.DisplayInfo{
			DisplayPrimary: {
				Ix:      0,
				Channel: dss.ChannelLCD,
				Enabled: true,
				WidthMM: 217, HeightMM: 136,
				Timings: dss.VideoMode{XRes: 1280, YRes: 800, Refresh: 60, PixClockKHz: 71000},
			},
		},
	}
}

// plugHDMI makes the external connector report a 1080p sink.
func (f *fakeDriver) plugHDMI() {
	f.infos[DisplayExternal] = dss.DisplayInfo{
		Ix:      1,
		Channel: dss.ChannelDigit,
		Enabled: true,
		Timings: dss.VideoMode{XRes: 1920, YRes: 1080, Refresh: 60, PixClockKHz: 148500},
		Modes: []dss.VideoMode{
			{XRes: 1920, YRes: 1080, Refresh: 60, PixClockKHz: 148500, Flags: dss.FlagRatio16x9},
			{XRes: 720, YRes: 480, Refresh: 59, PixClockKHz: 27027, Flags: dss.FlagRatio4x3},
		},
	}
}

func (f *fakeDriver) Limits() (dss.PlatformLimits, error) { return f.limits, nil }

func (f *fakeDriver) DisplayInfo(ix int) (dss.DisplayInfo, error) {
	info, ok := f.infos[ix]
	if !ok {
		return dss.DisplayInfo{}, fmt.Errorf("no sink on display %d", ix)
	}
	return info, nil
}

func (f *fakeDriver) SetVideoMode(ix int, mode dss.VideoMode) error {
	f.modes = append(f.modes, mode)
	return nil
}

func (f *fakeDriver) Post(disp int, comp *dss.Composition, buffers []*Buffer) error {
	rec := postRecord{disp: disp, comp: *comp}
	rec.comp.Overlays = append([]dss.Overlay(nil), comp.Overlays...)
	rec.comp.Managers = append([]dss.ManagerConfig(nil), comp.Managers...)
	rec.buffers = append([]*Buffer(nil), buffers...)
	f.posts = append(f.posts, rec)
	return f.postErr
}

func (f *fakeDriver) Blank(ix int, blank bool) error {
	f.blanks = append(f.blanks, blank)
	return nil
}

type fakeListener struct {
	mu          sync.Mutex
	invalidates int
	vsyncs      []int64
	hotplugs    []bool
}

func (l *fakeListener) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidates++
}

func (l *fakeListener) VSync(disp int, timestamp int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vsyncs = append(l.vsyncs, timestamp)
}

func (l *fakeListener) Hotplug(disp int, connected bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hotplugs = append(l.hotplugs, connected)
}

func (l *fakeListener) counts() (invalidates, vsyncs, hotplugs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.invalidates, len(l.vsyncs), len(l.hotplugs)
}

type fakeEvents struct {
	connected bool
	ch        chan Event
}

func newFakeEvents(connected bool) *fakeEvents {
	return &fakeEvents{connected: connected, ch: make(chan Event, 4)}
}

func (e *fakeEvents) Connected() bool      { return e.connected }
func (e *fakeEvents) Events() <-chan Event { return e.ch }

func TestNewCompositorNilDriver(t *testing.T) {
	_, err := NewCompositor(nil)
	if err == nil {
		t.Fatal("NewCompositor(nil) succeeded")
	}
}

func TestNewCompositorProbesPrimary(t *testing.T) {
	driver := newFakeDriver()
	c, err := NewCompositor(driver)
	require.NoError(t, err)

	d, err := c.Display(DisplayPrimary)
	require.NoError(t, err)
	assert.Equal(t, KindPanel, d.Kind)

	cfg := d.Configs[d.ActiveConfig]
	assert.Equal(t, 1280, cfg.XRes)
	assert.Equal(t, 800, cfg.YRes)
	assert.Equal(t, 149, cfg.XDPI)
	assert.Equal(t, 149, cfg.YDPI)

	_, err = c.Display(DisplayExternal)
	assert.ErrorIs(t, err, ErrInvalidDisplay)
}

func TestNewCompositorExternalConnectedAtStart(t *testing.T) {
	driver := newFakeDriver()
	driver.plugHDMI()

	c, err := NewCompositor(driver, WithEventSource(newFakeEvents(true)))
	require.NoError(t, err)

	d, err := c.Display(DisplayExternal)
	require.NoError(t, err)
	assert.Equal(t, KindHDMI, d.Kind)

	// Startup mode selection programs the 1080p mode.
	require.Len(t, driver.modes, 1)
	assert.Equal(t, 1920, driver.modes[0].XRes)
	assert.Equal(t, 1080, d.Info.Timings.YRes)
}

func TestPrepareCommitRoundTrip(t *testing.T) {
	driver := newFakeDriver()
	c, err := NewCompositor(driver)
	require.NoError(t, err)

	var layers []*Layer
	for i := 0; i < 5; i++ {
		layers = append(layers, testLayer(320, 200, FormatRGBX8888))
	}
	target := targetLayer(1280, 800)
	contents := []*FrameContents{{Layers: append(layers, target)}}

	require.NoError(t, c.Prepare(contents))

	for _, layer := range layers[:3] {
		assert.Equal(t, CompositionOverlay, layer.Composition)
	}
	for _, layer := range layers[3:] {
		assert.Equal(t, CompositionGPU, layer.Composition)
	}

	require.NoError(t, c.Commit(contents))

	require.Len(t, driver.posts, 1)
	post := driver.posts[0]
	assert.Equal(t, DisplayPrimary, post.disp)
	assert.Len(t, post.comp.Overlays, 4)
	require.Len(t, post.buffers, 4)

	// The framebuffer slot is empty through planning and bound to the
	// target's buffer at commit.
	assert.Same(t, target.Buffer, post.buffers[3])
	for i := 0; i < 3; i++ {
		assert.Same(t, layers[i].Buffer, post.buffers[i])
	}
}

func TestPrepareEmptyAndNilContents(t *testing.T) {
	driver := newFakeDriver()
	c, err := NewCompositor(driver)
	require.NoError(t, err)

	assert.NoError(t, c.Prepare(nil))
	assert.NoError(t, c.Commit(nil))

	// A nil entry pauses the display without posting.
	assert.NoError(t, c.Prepare([]*FrameContents{nil}))
	assert.NoError(t, c.Commit([]*FrameContents{nil}))
	assert.Empty(t, driver.posts)
}

func TestCommitWithoutTargetBuffer(t *testing.T) {
	driver := newFakeDriver()
	c, err := NewCompositor(driver)
	require.NoError(t, err)

	// The skipped layer forces GPU composition, but the target carries
	// no buffer to scan out.
	skipped := testLayer(1280, 800, FormatRGBX8888)
	skipped.Skip = true
	target := targetLayer(1280, 800)
	target.Buffer = nil
	contents := []*FrameContents{{Layers: []*Layer{skipped, target}}}

	require.NoError(t, c.Prepare(contents))
	err = c.Commit(contents)
	assert.ErrorContains(t, err, "no framebuffer target buffer")
	assert.Empty(t, driver.posts)
}

func TestCommitPostError(t *testing.T) {
	driver := newFakeDriver()
	c, err := NewCompositor(driver)
	require.NoError(t, err)
	driver.postErr = errors.New("EINVAL")

	ui := testLayer(1280, 800, FormatRGBX8888)
	contents := []*FrameContents{{Layers: []*Layer{ui, targetLayer(1280, 800)}}}

	require.NoError(t, c.Prepare(contents))
	err = c.Commit(contents)
	assert.ErrorIs(t, err, ErrDriverRejected)
	assert.ErrorIs(t, err, driver.postErr)
}

func TestCommitStarvedMirrorInvalidates(t *testing.T) {
	driver := newFakeDriver()
	listener := &fakeListener{}
	c, err := NewCompositor(driver, WithListener(listener))
	require.NoError(t, err)

	// A heavy primary frame takes all four pipelines.
	var layers []*Layer
	for i := 0; i < 5; i++ {
		layers = append(layers, testLayer(320, 200, FormatRGBX8888))
	}
	contents := []*FrameContents{{Layers: append(layers, targetLayer(1280, 800))}}
	require.NoError(t, c.Prepare(contents))
	require.NoError(t, c.Commit(contents))

	// The sink plugs in while every pipeline is still draining; it gets
	// nothing this frame and asks for a replan.
	driver.plugHDMI()
	notifyHotplug, _ := c.handleHotplug(true)
	require.True(t, notifyHotplug)

	both := []*FrameContents{
		{Layers: append(layers, targetLayer(1280, 800))},
		{Layers: []*Layer{targetLayer(1920, 1080)}},
	}
	require.NoError(t, c.Prepare(both))
	ext, err := c.Display(DisplayExternal)
	require.NoError(t, err)
	require.Equal(t, 0, ext.plan.Budget.AvailOverlays)

	require.NoError(t, c.Commit(both))
	invalidates, _, _ := listener.counts()
	assert.Equal(t, 1, invalidates)
}

func TestCommitResetPrimaryOnce(t *testing.T) {
	driver := newFakeDriver()
	policy := DefaultPolicy()
	policy.ResetPrimary = true
	c, err := NewCompositor(driver, WithPolicy(policy))
	require.NoError(t, err)

	ui := testLayer(1280, 800, FormatRGBX8888)
	contents := []*FrameContents{{Layers: []*Layer{ui, targetLayer(1280, 800)}}}

	require.NoError(t, c.Prepare(contents))
	require.NoError(t, c.Commit(contents))

	// First commit: the reset's empty post and blank cycle, then the
	// frame.
	require.Len(t, driver.posts, 2)
	assert.Empty(t, driver.posts[0].comp.Overlays)
	assert.Equal(t, []bool{true, false}, driver.blanks)

	require.NoError(t, c.Prepare(contents))
	require.NoError(t, c.Commit(contents))
	assert.Len(t, driver.posts, 3)
	assert.Len(t, driver.blanks, 2)
}

func TestSetPolicyClampsNV12Limit(t *testing.T) {
	driver := newFakeDriver()
	c, err := NewCompositor(driver)
	require.NoError(t, err)

	p := c.Policy()
	p.UpscaledNV12Limit = 4096
	c.SetPolicy(p)
	assert.Equal(t, 2.0, c.Policy().UpscaledNV12Limit)
}

func TestBlankStopsPosting(t *testing.T) {
	driver := newFakeDriver()
	c, err := NewCompositor(driver)
	require.NoError(t, err)

	require.NoError(t, c.Blank(DisplayPrimary, true))

	ui := testLayer(1280, 800, FormatRGBX8888)
	contents := []*FrameContents{{Layers: []*Layer{ui, targetLayer(1280, 800)}}}
	require.NoError(t, c.Prepare(contents))
	require.NoError(t, c.Commit(contents))

	// A blanked display still posts, but with an empty overlay list that
	// clears the screen.
	require.Len(t, driver.posts, 1)
	assert.Empty(t, driver.posts[0].comp.Overlays)

	require.NoError(t, c.Blank(DisplayPrimary, false))
	require.NoError(t, c.Prepare(contents))
	require.NoError(t, c.Commit(contents))
	require.Len(t, driver.posts, 2)
	assert.NotEmpty(t, driver.posts[1].comp.Overlays)
}
