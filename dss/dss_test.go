// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package dss

import "testing"

func ovl(ix, z int) Overlay {
	o := Overlay{}
	o.Cfg.Ix = ix
	o.Cfg.ZOrder = z
	o.Cfg.Enabled = true
	return o
}

func TestCompositionValidate(t *testing.T) {
	tests := []struct {
		name     string
		overlays []Overlay
		wantErr  bool
	}{
		{
			name: "empty",
		},
		{
			name:     "distinct pipes and z",
			overlays: []Overlay{ovl(0, 0), ovl(1, 1), ovl(2, 2)},
		},
		{
			name:     "duplicate z-order",
			overlays: []Overlay{ovl(0, 1), ovl(1, 1)},
			wantErr:  true,
		},
		{
			name:     "duplicate pipeline",
			overlays: []Overlay{ovl(2, 0), ovl(2, 1)},
			wantErr:  true,
		},
		{
			// A mirrored frame: the clones take pipes from the top and
			// z slots above the primary's.
			name:     "clones from the top",
			overlays: []Overlay{ovl(0, 0), ovl(1, 1), ovl(3, 2), ovl(2, 3)},
		},
		{
			name:     "writeback pipe exempt",
			overlays: []Overlay{ovl(0, 0), ovl(PipeWriteback, 0)},
		},
		{
			name:     "out of range slots ignored",
			overlays: []Overlay{ovl(-1, 7), ovl(-1, 7)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Composition{Overlays: tt.overlays}
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVideoModeString(t *testing.T) {
	tests := []struct {
		mode VideoMode
		want string
	}{
		{VideoMode{XRes: 1280, YRes: 800, Refresh: 60}, "1280x800@60"},
		{VideoMode{XRes: 1920, YRes: 1080, Refresh: 30, VMode: VModeInterlaced}, "1920x1080@30i"},
		{VideoMode{}, "0x0@0"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestVideoModeInterlaced(t *testing.T) {
	if (VideoMode{VMode: VModeInterlaced}).Interlaced() != true {
		t.Error("Interlaced() = false for an interlaced mode")
	}
	if (VideoMode{VMode: 1 << 4}).Interlaced() != false {
		t.Error("Interlaced() = true for a non-interlaced scan variant")
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{ChannelLCD.String(), "lcd"},
		{ChannelDigit.String(), "digit"},
		{Channel(9).String(), "Channel(9)"},
		{ModeDisplay.String(), "display"},
		{ModeDisplayCapture.String(), "display+capture"},
		{ColorNV12.String(), "nv12"},
		{ColorXRGB32.String(), "xrgb32"},
		{AddrOverlay.String(), "overlay"},
		{AddrFramebuffer.String(), "framebuffer"},
		{WBMem2Mem.String(), "mem2mem"},
		{WBCapture.String(), "capture"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	if l.MaxPipes != MaxPipes {
		t.Errorf("MaxPipes = %d, want %d", l.MaxPipes, MaxPipes)
	}
	if l.NonScalingPipes != 1 {
		t.Errorf("NonScalingPipes = %d, want 1", l.NonScalingPipes)
	}
	if l.TilerSlotBytes != 16<<20 {
		t.Errorf("TilerSlotBytes = %d, want one 16 MiB slot", l.TilerSlotBytes)
	}
}
