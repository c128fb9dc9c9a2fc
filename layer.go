package hwc

import (
	"fmt"
	"image"
)

// Buffer describes a scanout buffer owned by the caller's buffer queue. The
// engine never touches pixel data; Handle is an opaque token passed through
// to the driver at submission.
type Buffer struct {
	Handle any
	Width  int
	Height int
	Format Format
}

// Mem1D returns the 1D tiled memory the buffer occupies when fetched by an
// overlay pipeline. NV12 buffers live in 2D tiled memory and cost nothing
// from the 1D slots.
func (b *Buffer) Mem1D() int {
	if b == nil || b.Format == FormatNV12 {
		return 0
	}
	return b.Format.Stride(b.Width) * b.Height
}

// LayerTransform is a bitmask describing a layer's content orientation.
// Flips apply before the rotation.
type LayerTransform uint8

const (
	TransformFlipH LayerTransform = 1 << iota
	TransformFlipV
	TransformRot90
)

const (
	TransformRot180 = TransformFlipH | TransformFlipV
	TransformRot270 = TransformRot180 | TransformRot90
)

// RotationMirror converts the flag form into the clockwise quarter turns
// plus horizontal mirror form the overlay pipelines take.
func (t LayerTransform) RotationMirror() (rotation int, mirror bool) {
	if t&TransformFlipH != 0 {
		mirror = true
	}
	if t&TransformFlipV != 0 {
		rotation = 2
		mirror = !mirror
	}
	if t&TransformRot90 != 0 {
		if mirror {
			rotation--
		} else {
			rotation++
		}
		rotation &= 3
	}
	return rotation, mirror
}

func (t LayerTransform) String() string {
	if t == 0 {
		return "none"
	}
	s := ""
	if t&TransformFlipH != 0 {
		s += "|flipH"
	}
	if t&TransformFlipV != 0 {
		s += "|flipV"
	}
	if t&TransformRot90 != 0 {
		s += "|rot90"
	}
	return s[1:]
}

// Blending selects how a layer combines with the content below it.
type Blending uint8

const (
	// BlendNone ignores the alpha channel; the layer is opaque.
	BlendNone Blending = iota
	// BlendPremult blends with premultiplied per-pixel alpha.
	BlendPremult
	// BlendCoverage blends with straight per-pixel alpha.
	BlendCoverage
)

func (b Blending) String() string {
	switch b {
	case BlendNone:
		return "none"
	case BlendPremult:
		return "premult"
	case BlendCoverage:
		return "coverage"
	default:
		return fmt.Sprintf("Blending(%d)", uint8(b))
	}
}

// Composition is the engine's per-frame verdict for a layer, written back
// into the layer list during Prepare.
type Composition uint8

const (
	// CompositionGPU routes the layer through GPU composition into the
	// target framebuffer. This is the reset state of every frame.
	CompositionGPU Composition = iota
	// CompositionOverlay assigns the layer a hardware overlay pipeline.
	CompositionOverlay
	// CompositionTarget marks the framebuffer layer that receives GPU
	// output. The caller provides it last in the layer list.
	CompositionTarget
)

func (c Composition) String() string {
	switch c {
	case CompositionGPU:
		return "gpu"
	case CompositionOverlay:
		return "overlay"
	case CompositionTarget:
		return "target"
	default:
		return fmt.Sprintf("Composition(%d)", uint8(c))
	}
}

// Hints are planning outcomes the caller may act on when producing the
// next frame.
type Hints uint8

const (
	// HintTripleBuffer marks layers scanned out directly, which stay on
	// screen a frame longer than composited ones.
	HintTripleBuffer Hints = 1 << iota
	// HintClearFB asks the GPU to clear the framebuffer region under an
	// opaque overlay instead of leaving stale content there.
	HintClearFB
)

// Layer is one surface in a display's layer list, ordered back to front.
// All fields up to Composition are caller input; Composition and Hints are
// written by Prepare.
type Layer struct {
	Buffer       *Buffer
	SourceCrop   image.Rectangle // buffer region to show
	DisplayFrame image.Rectangle // where it lands on the display
	Transform    LayerTransform
	Blending     Blending
	Protected    bool // content requires a protected path to the display
	Dockable     bool // eligible to play alone on a docked external sink
	Skip         bool // caller composites this layer itself

	Composition Composition
	Hints       Hints
}

// Blended reports whether the layer blends with content below it.
func (l *Layer) Blended() bool {
	return l.Blending != BlendNone
}

// sourceSize returns the crop size in display orientation.
func (l *Layer) sourceSize() (w, h int) {
	w = l.SourceCrop.Dx()
	h = l.SourceCrop.Dy()
	if l.Transform&TransformRot90 != 0 {
		w, h = h, w
	}
	return w, h
}

// Scaled reports whether showing the layer requires scaling.
func (l *Layer) Scaled() bool {
	w, h := l.sourceSize()
	return l.DisplayFrame.Dx() != w || l.DisplayFrame.Dy() != h
}

// isNV12 reports whether the layer's buffer holds NV12 content.
func (l *Layer) isNV12() bool {
	return l.Buffer != nil && l.Buffer.Format == FormatNV12
}

// upscaledNV12 reports whether the layer is NV12 content upscaled past the
// given factor. Such layers keep their overlay even when composition is
// being forced to the GPU, since the GPU upscale would visibly degrade.
func (l *Layer) upscaledNV12(limit float64) bool {
	if !l.isNV12() {
		return false
	}
	w, h := l.sourceSize()
	return float64(l.DisplayFrame.Dx()) >= float64(w)*limit ||
		float64(l.DisplayFrame.Dy()) >= float64(h)*limit
}

// mem1D returns the 1D tiled memory needed to scan the layer out.
func (l *Layer) mem1D() int {
	return l.Buffer.Mem1D()
}
