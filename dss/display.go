// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package dss

import "fmt"

// Channel identifies the controller output a display sits on.
type Channel uint8

const (
	ChannelLCD Channel = iota
	ChannelLCD2
	// ChannelDigit is the TV-style digital output (HDMI encoder).
	ChannelDigit
)

func (c Channel) String() string {
	switch c {
	case ChannelLCD:
		return "lcd"
	case ChannelLCD2:
		return "lcd2"
	case ChannelDigit:
		return "digit"
	default:
		return fmt.Sprintf("Channel(%d)", uint8(c))
	}
}

// VideoMode flag bits, VMode field.
const (
	// VModeInterlaced marks an interlaced scan mode. Any other VMode bit
	// marks a scan variant the compositor does not drive.
	VModeInterlaced uint32 = 1 << 0
)

// VideoMode flag bits, Flags field.
const (
	// FlagRatio4x3 and FlagRatio16x9 carry the sink's physical aspect hint
	// for the mode. A mode carrying either is a standard broadcast mode.
	FlagRatio4x3  uint32 = 1 << 6
	FlagRatio16x9 uint32 = 1 << 7
)

// VideoMode is one display timing, either the currently programmed one or an
// entry from the sink's mode database.
//
// Pixel clocks are in kHz throughout.
type VideoMode struct {
	XRes, YRes  int
	Refresh     int // Hz
	PixClockKHz int
	VMode       uint32
	Flags       uint32
}

// Interlaced reports whether the mode is interlaced.
func (m VideoMode) Interlaced() bool {
	return m.VMode&VModeInterlaced != 0
}

func (m VideoMode) String() string {
	s := fmt.Sprintf("%dx%d@%d", m.XRes, m.YRes, m.Refresh)
	if m.Interlaced() {
		s += "i"
	}
	return s
}

// DisplayInfo is the driver's description of one attached display: its
// current timings, physical dimensions when the sink reports them, and the
// sink's mode database when it has one.
type DisplayInfo struct {
	Ix      int
	Channel Channel
	Enabled bool

	WidthMM, HeightMM int

	Timings VideoMode
	Modes   []VideoMode
}
