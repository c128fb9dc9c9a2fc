package hwc

import (
	"errors"
	"testing"

	"github.com/godss/hwc/dss"
	"github.com/godss/hwc/geom"
)

// mirrorSink attaches an external HDMI display mirroring the primary at the
// same resolution, with an identity output transform.
func mirrorSink(c *Compositor) *Display {
	ext := testExternalDisplay(ContentMirror)
	ext.transform.Region = geom.Rect{W: 1280, H: 800}
	ext.transform.Matrix = geom.Identity()
	c.displays[DisplayExternal] = ext
	return ext
}

func TestMirrorCompositionClones(t *testing.T) {
	c := testCompositor()
	c.displays[DisplayPrimary] = testPrimary()
	ext := mirrorSink(c)

	ui := testLayer(1280, 800, FormatRGBX8888)
	fc := &FrameContents{Layers: []*Layer{ui, targetLayer(1280, 800)}}
	planFrame(t, c, DisplayPrimary, fc)

	plan := &c.displays[DisplayPrimary].plan
	if plan.Budget.UsedOverlays != 1 {
		t.Fatalf("primary UsedOverlays = %d, want 1", plan.Budget.UsedOverlays)
	}

	c.mirrorComposition(ext)

	if len(plan.Comp.Overlays) != 2 {
		t.Fatalf("overlays = %d, want source plus clone", len(plan.Comp.Overlays))
	}
	clone := plan.Comp.Overlays[1]
	// The clone takes the top pipeline, moves to the sink's manager, and
	// shares the source overlay's buffer by reference.
	if clone.Cfg.Ix != 3 {
		t.Errorf("clone pipeline = %d, want 3", clone.Cfg.Ix)
	}
	if clone.Cfg.MgrIx != 1 {
		t.Errorf("clone manager = %d, want 1", clone.Cfg.MgrIx)
	}
	if clone.Addressing != dss.AddrOverlay || clone.BufferIndex != 0 {
		t.Errorf("clone addressing = %v[%d], want overlay reference to 0",
			clone.Addressing, clone.BufferIndex)
	}
	if clone.Cfg.ZOrder != 1 {
		t.Errorf("clone z = %d, want 1", clone.Cfg.ZOrder)
	}
	if len(plan.Comp.Managers) != 2 || plan.Comp.Managers[1].Ix != 1 {
		t.Errorf("managers = %+v, want primary and sink", plan.Comp.Managers)
	}
	if c.prev.ExternalOverlays != 1 {
		t.Errorf("prev.ExternalOverlays = %d, want 1", c.prev.ExternalOverlays)
	}
}

func TestMirrorCompositionTruncates(t *testing.T) {
	c := testCompositor()
	c.displays[DisplayPrimary] = testPrimary()
	ext := mirrorSink(c)

	// Two protected layers hold three pipes on the primary; only one pipe
	// is left for clones, and the remaining clones are dropped.
	p0 := testLayer(640, 400, FormatRGBX8888)
	p0.Protected = true
	p1 := testLayer(640, 400, FormatRGBX8888)
	p1.Protected = true
	u2 := testLayer(1280, 800, FormatRGBX8888)
	fc := &FrameContents{Layers: []*Layer{p0, p1, u2, targetLayer(1280, 800)}}
	planFrame(t, c, DisplayPrimary, fc)

	plan := &c.displays[DisplayPrimary].plan
	if plan.Budget.UsedOverlays != 3 {
		t.Fatalf("primary UsedOverlays = %d, want 3", plan.Budget.UsedOverlays)
	}

	c.mirrorComposition(ext)

	if len(plan.Comp.Overlays) != 4 {
		t.Fatalf("overlays = %d, want three sources and one clone", len(plan.Comp.Overlays))
	}
	clone := plan.Comp.Overlays[3]
	if clone.Cfg.Ix != 3 || clone.Cfg.MgrIx != 1 {
		t.Errorf("clone ix, mgr = %d, %d, want 3, 1", clone.Cfg.Ix, clone.Cfg.MgrIx)
	}
	if clone.BufferIndex != 0 || clone.Cfg.ZOrder != 3 {
		t.Errorf("clone buffer, z = %d, %d, want 0, 3", clone.BufferIndex, clone.Cfg.ZOrder)
	}
	if c.prev.ExternalOverlays != 1 {
		t.Errorf("prev.ExternalOverlays = %d, want 1", c.prev.ExternalOverlays)
	}

	if err := c.cloneOverlay(ext, 1); !errors.Is(err, ErrHardwareBusy) {
		t.Errorf("cloneOverlay past the ceiling = %v, want ErrHardwareBusy", err)
	}
}

func TestMirrorCompositionMarksSinkLayers(t *testing.T) {
	c := testCompositor()
	c.displays[DisplayPrimary] = testPrimary()
	ext := mirrorSink(c)

	a := testLayer(640, 480, FormatRGBX8888)
	b := testLayer(640, 480, FormatRGBX8888)
	ext.contents = &FrameContents{Layers: []*Layer{a, b, targetLayer(1920, 1080)}}

	ui := testLayer(1280, 800, FormatRGBX8888)
	planFrame(t, c, DisplayPrimary, &FrameContents{Layers: []*Layer{ui, targetLayer(1280, 800)}})
	c.mirrorComposition(ext)

	// The sink's own list is never composited; every layer is reported
	// as taken so the caller does not render them.
	if a.Composition != CompositionOverlay || b.Composition != CompositionOverlay {
		t.Errorf("sink layer compositions = %v, %v, want overlay, overlay",
			a.Composition, b.Composition)
	}
}

func TestMirrorCompositionBlankedPrimary(t *testing.T) {
	c := testCompositor()
	c.displays[DisplayPrimary] = testPrimary()
	ext := mirrorSink(c)

	ui := testLayer(1280, 800, FormatRGBX8888)
	planFrame(t, c, DisplayPrimary, &FrameContents{Layers: []*Layer{ui, targetLayer(1280, 800)}})
	c.displays[DisplayPrimary].Blanked = true

	plan := &c.displays[DisplayPrimary].plan
	before := len(plan.Comp.Overlays)
	c.mirrorComposition(ext)

	if len(plan.Comp.Overlays) != before {
		t.Errorf("overlays grew from %d to %d while primary blanked", before, len(plan.Comp.Overlays))
	}
	if len(plan.Comp.Managers) != 1 {
		t.Errorf("managers = %d, want primary only", len(plan.Comp.Managers))
	}
}

func TestCloneOverlayRotationBackBuffer(t *testing.T) {
	c := testCompositor()
	c.displays[DisplayPrimary] = testPrimary()
	ext := mirrorSink(c)
	ext.transform.Rotation = 1
	back := &Buffer{Handle: "back", Width: 800, Height: 1280, Format: FormatRGBX8888}
	ext.backBuffers[0] = back
	ext.backBuffers[1] = back

	// A skipped layer forces GPU composition, so overlay 0 is the
	// framebuffer. Its clone must read the reoriented back buffer, not
	// the framebuffer itself.
	skipped := testLayer(1280, 800, FormatRGBX8888)
	skipped.Skip = true
	planFrame(t, c, DisplayPrimary, &FrameContents{Layers: []*Layer{skipped, targetLayer(1280, 800)}})

	plan := &c.displays[DisplayPrimary].plan
	if !plan.UseGPU {
		t.Fatal("UseGPU = false, want GPU composition")
	}
	c.mirrorComposition(ext)

	if len(plan.Comp.Overlays) != 2 {
		t.Fatalf("overlays = %d, want framebuffer plus clone", len(plan.Comp.Overlays))
	}
	clone := plan.Comp.Overlays[1]
	if clone.Addressing != dss.AddrLayer {
		t.Fatalf("clone addressing = %v, want a direct buffer", clone.Addressing)
	}
	if clone.BufferIndex < 0 || clone.BufferIndex >= len(plan.Buffers) ||
		plan.Buffers[clone.BufferIndex] != back {
		t.Errorf("clone buffer index %d does not reference the back buffer", clone.BufferIndex)
	}
}
