package hwc

import (
	"image"
	"testing"
)

func TestRotationMirror(t *testing.T) {
	tests := []struct {
		name       string
		transform  LayerTransform
		wantRot    int
		wantMirror bool
	}{
		{"identity", 0, 0, false},
		{"flipH", TransformFlipH, 0, true},
		{"flipV", TransformFlipV, 2, true},
		{"rot90", TransformRot90, 1, false},
		{"rot180", TransformRot180, 2, false},
		{"rot270", TransformRot270, 3, false},
		{"flipH rot90", TransformFlipH | TransformRot90, 3, true},
		{"flipV rot90", TransformFlipV | TransformRot90, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rot, mirror := tt.transform.RotationMirror()
			if rot != tt.wantRot || mirror != tt.wantMirror {
				t.Errorf("%v.RotationMirror() = (%d, %v), want (%d, %v)",
					tt.transform, rot, mirror, tt.wantRot, tt.wantMirror)
			}
		})
	}
}

func TestLayerTransformString(t *testing.T) {
	tests := []struct {
		transform LayerTransform
		want      string
	}{
		{0, "none"},
		{TransformFlipH, "flipH"},
		{TransformRot90, "rot90"},
		{TransformRot180, "flipH|flipV"},
		{TransformRot270, "flipH|flipV|rot90"},
	}
	for _, tt := range tests {
		if got := tt.transform.String(); got != tt.want {
			t.Errorf("LayerTransform(%d).String() = %q, want %q", uint8(tt.transform), got, tt.want)
		}
	}
}

func TestLayerScaled(t *testing.T) {
	tests := []struct {
		name  string
		layer Layer
		want  bool
	}{
		{
			"same size",
			Layer{
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(100, 100, 740, 580),
			},
			false,
		},
		{
			"upscale",
			Layer{
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 1280, 960),
			},
			true,
		},
		{
			"rot90 swaps axes",
			Layer{
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 480, 640),
				Transform:    TransformRot90,
			},
			false,
		},
		{
			"rot90 mismatched",
			Layer{
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 640, 480),
				Transform:    TransformRot90,
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layer.Scaled(); got != tt.want {
				t.Errorf("Scaled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpscaledNV12(t *testing.T) {
	nv12 := &Buffer{Handle: 1, Width: 640, Height: 480, Format: FormatNV12}
	rgb := &Buffer{Handle: 2, Width: 640, Height: 480, Format: FormatRGBX8888}
	tests := []struct {
		name  string
		layer Layer
		limit float64
		want  bool
	}{
		{
			"below limit",
			Layer{
				Buffer:       nv12,
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 1270, 950),
			},
			2.0, false,
		},
		{
			"at limit",
			Layer{
				Buffer:       nv12,
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 1280, 960),
			},
			2.0, true,
		},
		{
			"one axis past limit",
			Layer{
				Buffer:       nv12,
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 720, 960),
			},
			2.0, true,
		},
		{
			"rgb never qualifies",
			Layer{
				Buffer:       rgb,
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 1920, 1440),
			},
			2.0, false,
		},
		{
			"nil buffer",
			Layer{
				SourceCrop:   image.Rect(0, 0, 640, 480),
				DisplayFrame: image.Rect(0, 0, 1920, 1440),
			},
			2.0, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layer.upscaledNV12(tt.limit); got != tt.want {
				t.Errorf("upscaledNV12(%v) = %v, want %v", tt.limit, got, tt.want)
			}
		})
	}
}

func TestBufferMem1D(t *testing.T) {
	tests := []struct {
		name string
		buf  *Buffer
		want int
	}{
		{"nil buffer", nil, 0},
		{"rgbx", &Buffer{Width: 1280, Height: 800, Format: FormatRGBX8888}, 5120 * 800},
		{"rgb565", &Buffer{Width: 1280, Height: 800, Format: FormatRGB565}, 2560 * 800},
		{"unaligned width", &Buffer{Width: 101, Height: 10, Format: FormatRGBA8888}, 512 * 10},
		{"nv12 is 2D tiled", &Buffer{Width: 1920, Height: 1080, Format: FormatNV12}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.buf.Mem1D(); got != tt.want {
				t.Errorf("Mem1D() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBlendingString(t *testing.T) {
	tests := []struct {
		b    Blending
		want string
	}{
		{BlendNone, "none"},
		{BlendPremult, "premult"},
		{BlendCoverage, "coverage"},
		{Blending(7), "Blending(7)"},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("Blending(%d).String() = %q, want %q", uint8(tt.b), got, tt.want)
		}
	}
}

func TestCompositionString(t *testing.T) {
	tests := []struct {
		c    Composition
		want string
	}{
		{CompositionGPU, "gpu"},
		{CompositionOverlay, "overlay"},
		{CompositionTarget, "target"},
		{Composition(9), "Composition(9)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Composition(%d).String() = %q, want %q", uint8(tt.c), got, tt.want)
		}
	}
}
