package hwc

import "errors"

// ErrInvalidDisplay indicates an operation referenced a display index that is
// out of range or not currently attached.
var ErrInvalidDisplay = errors.New("hwc: invalid display")

// ErrResourceExhausted indicates no overlay pipeline or tiled memory was left
// for a request. Within planning this is not fatal; the affected layers fall
// back to GPU composition.
var ErrResourceExhausted = errors.New("hwc: overlay resources exhausted")

// ErrUnsupportedGeometry indicates the scaler cannot produce the requested
// source-to-window mapping.
var ErrUnsupportedGeometry = errors.New("hwc: unsupported geometry")

// ErrHardwareBusy indicates a pipeline could not be taken because it is still
// committed to another display for the current frame.
var ErrHardwareBusy = errors.New("hwc: hardware busy")

// ErrDriverRejected indicates the driver refused a submitted composition.
var ErrDriverRejected = errors.New("hwc: driver rejected composition")
