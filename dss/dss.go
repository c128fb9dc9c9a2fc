// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dss defines the descriptor model handed to the display subsystem
// driver: overlay pipeline configurations, overlay manager configurations,
// video timings and the platform capability limits that bound them.
//
// The types here are plain data. They mirror the submission interface of the
// display controller one frame at a time and carry no composition policy;
// deciding what goes into them is the job of the parent package.
package dss

import "fmt"

// Overlay pipeline indexes. The graphics pipeline cannot scale; the video
// pipelines can. The writeback pipe is not a source pipeline and does not
// count against MaxPipes.
const (
	PipeGFX = iota
	PipeVideo1
	PipeVideo2
	PipeVideo3
	PipeWriteback
)

// MaxPipes is the number of source overlay pipelines on the controller.
const MaxPipes = 4

// CompositionMode selects what the controller does with a submitted frame.
type CompositionMode uint8

const (
	// ModeDisplay scans the frame out to the attached displays.
	ModeDisplay CompositionMode = iota
	// ModeDisplayCapture scans the frame out and captures it through the
	// writeback pipe in the same pass.
	ModeDisplayCapture
)

func (m CompositionMode) String() string {
	switch m {
	case ModeDisplay:
		return "display"
	case ModeDisplayCapture:
		return "display+capture"
	default:
		return fmt.Sprintf("CompositionMode(%d)", uint8(m))
	}
}

// ManagerConfig configures one overlay manager (the blending stage feeding a
// display output) for a frame.
type ManagerConfig struct {
	Ix            int
	AlphaBlending bool
	SwapRB        bool
}

// Composition is one frame's worth of controller state: every overlay and
// every manager touched by the frame, submitted atomically.
//
// A composition may span multiple managers. When an external display mirrors
// the primary one, the primary frame carries the external manager's cloned
// overlays as well.
type Composition struct {
	SyncID   uint32
	Mode     CompositionMode
	Managers []ManagerConfig
	Overlays []Overlay
}

// Validate checks that the source overlays of the composition occupy distinct
// z-order slots and distinct pipelines. The writeback pipe is exempt: it is a
// sink, not a blended source.
func (c *Composition) Validate() error {
	var zUsed, ixUsed uint
	for i := range c.Overlays {
		cfg := &c.Overlays[i].Cfg
		if cfg.Ix == PipeWriteback {
			continue
		}
		if cfg.ZOrder >= 0 && cfg.ZOrder < MaxPipes {
			if zUsed&(1<<cfg.ZOrder) != 0 {
				return fmt.Errorf("dss: duplicate z-order %d", cfg.ZOrder)
			}
			zUsed |= 1 << cfg.ZOrder
		}
		if cfg.Ix >= 0 && cfg.Ix < MaxPipes {
			if ixUsed&(1<<cfg.Ix) != 0 {
				return fmt.Errorf("dss: duplicate pipeline %d", cfg.Ix)
			}
			ixUsed |= 1 << cfg.Ix
		}
	}
	return nil
}
