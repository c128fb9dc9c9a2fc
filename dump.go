package hwc

import (
	"fmt"
	"strings"
)

// Dump returns a human-readable snapshot of the engine and each attached
// display's last plan, for bug reports and state dumps.
func (c *Compositor) Dump() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dump()
}

// dump is Dump without the locking, for callers already holding c.mu.
func (c *Compositor) dump() string {
	var b strings.Builder

	fmt.Fprintf(&b, "hwc %s\n", Version)
	fmt.Fprintf(&b, "  limits: pipes=%d nonscaling=%d tilerslot=%d\n",
		c.limits.MaxPipes, c.limits.NonScalingPipes, c.limits.TilerSlotBytes)
	fmt.Fprintf(&b, "  policy: rgbOrder=%t nv12Only=%t blit=%s idle=%s mirror=%t\n",
		c.policy.RGBOrder, c.policy.NV12Only, c.policy.Blit,
		c.policy.IdleTimeout, c.policy.Mirror.Enabled)
	fmt.Fprintf(&b, "  forceGPU=%d lastOverlays: internal=%d external=%d\n",
		c.forceGPU, c.prev.InternalOverlays, c.prev.ExternalOverlays)

	for ix, d := range c.displays {
		if d == nil {
			continue
		}
		dumpDisplay(&b, ix, d)
	}

	return b.String()
}

func dumpDisplay(b *strings.Builder, ix int, d *Display) {
	cfg := d.config()
	fmt.Fprintf(b, "display %d: %s %dx%d@%d mgr=%d mode=%s",
		ix, d.Kind, cfg.XRes, cfg.YRes, cfg.FPS, d.MgrIx, d.Mode)
	if d.Blanked {
		b.WriteString(" blanked")
	}
	if d.hdmi != nil && d.hdmi.modeSet {
		fmt.Fprintf(b, " videomode=%s", d.Info.Timings)
	}
	b.WriteByte('\n')

	if t := &d.transform; t.Rotation != 0 || t.HFlip || t.Scaling {
		fmt.Fprintf(b, "  transform: rot=%d hflip=%t scaling=%t region=%s\n",
			t.Rotation*90, t.HFlip, t.Scaling, t.Region)
	}

	s := &d.stats
	fmt.Fprintf(b, "  layers: count=%d composable=%d scaled=%d rgb=%d bgr=%d nv12=%d protected=%d mem1d=%d\n",
		s.Count, s.Composable, s.Scaled, s.RGB, s.BGR, s.NV12, s.Protected, s.Mem1D)

	p := &d.plan
	bd := &p.Budget
	fmt.Fprintf(b, "  budget: base=%d wanted=%d avail=%d scaling=%d used=%d tiler=%d\n",
		bd.OverlayIxBase, bd.WantedOverlays, bd.AvailOverlays,
		bd.ScalingOverlays, bd.UsedOverlays, bd.TilerSlotBytes)
	fmt.Fprintf(b, "  plan: sync=%d gpu=%t swapRB=%t blit=%t buffers=%d\n",
		p.Comp.SyncID, p.UseGPU, p.SwapRB, p.blitActive, len(p.Buffers))

	for i := range p.Comp.Overlays {
		o := &p.Comp.Overlays[i]
		state := ""
		if !o.Cfg.Enabled {
			state = " disabled"
		}
		fmt.Fprintf(b, "    ovl %d: pipe=%d mgr=%d z=%d %s crop=%s win=%s rot=%d addr=%s[%d]%s\n",
			i, o.Cfg.Ix, o.Cfg.MgrIx, o.Cfg.ZOrder, o.Cfg.Color,
			o.Cfg.Crop, o.Cfg.Win, o.Cfg.Rotation, o.Addressing, o.BufferIndex, state)
	}
}
