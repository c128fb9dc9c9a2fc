package hwc

import (
	"fmt"

	"github.com/godss/hwc/dss"
)

// Format identifies a layer buffer's pixel format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatRGB565
	FormatRGBX8888
	FormatRGBA8888
	FormatBGRX8888
	FormatBGRA8888
	// FormatNV12 is two-plane YUV 4:2:0 in 2D tiled memory. It is the only
	// format the overlay hardware can rotate.
	FormatNV12
)

func (f Format) String() string {
	switch f {
	case FormatRGB565:
		return "rgb565"
	case FormatRGBX8888:
		return "rgbx8888"
	case FormatRGBA8888:
		return "rgba8888"
	case FormatBGRX8888:
		return "bgrx8888"
	case FormatBGRA8888:
		return "bgra8888"
	case FormatNV12:
		return "nv12"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Valid reports whether f is a format the overlay hardware can scan out.
func (f Format) Valid() bool {
	return f > FormatUnknown && f <= FormatNV12
}

// BGROrder reports whether f stores blue before red. Composing such layers
// directly requires the manager-wide channel swap, which the TV output
// lacks.
func (f Format) BGROrder() bool {
	return f == FormatBGRX8888 || f == FormatBGRA8888
}

// RGBOrder reports whether f stores red before blue.
func (f Format) RGBOrder() bool {
	return f == FormatRGB565 || f == FormatRGBX8888 || f == FormatRGBA8888
}

// hwAlign is the pixel alignment of scanout buffer rows.
const hwAlign = 32

// Stride returns the byte stride of a scanout buffer row. For NV12 this is
// the luma plane stride.
func (f Format) Stride(width int) int {
	aligned := (width + hwAlign - 1) &^ (hwAlign - 1)
	switch f {
	case FormatRGB565:
		return aligned * 2
	case FormatNV12:
		return aligned
	default:
		return aligned * 4
	}
}

// ColorMode returns the controller color mode scanning out f. Alpha-capable
// formats use the alpha-carrying mode only when the layer actually blends.
func (f Format) ColorMode(blended bool) dss.ColorMode {
	switch f {
	case FormatRGB565:
		return dss.ColorRGB16
	case FormatRGBX8888, FormatBGRX8888:
		return dss.ColorXRGB32
	case FormatRGBA8888, FormatBGRA8888:
		if blended {
			return dss.ColorARGB32
		}
		return dss.ColorXRGB32
	case FormatNV12:
		return dss.ColorNV12
	default:
		return dss.ColorNone
	}
}
