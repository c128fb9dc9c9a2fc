package hwc

// LayerStatistics summarizes one display's layer list for a single frame.
// The planner reads these tallies instead of re-walking the list at every
// decision point.
type LayerStatistics struct {
	// Count is the number of layers excluding the framebuffer target.
	Count int
	// Composable is the number of layers the overlay hardware could scan
	// out directly.
	Composable int
	// Scaled counts composable layers that need the scaler, including all
	// NV12 layers since those only decode on scaling pipelines.
	Scaled int

	RGB       int
	BGR       int
	NV12      int
	Dockable  int
	Protected int

	// Framebuffer is the number of framebuffer target layers present.
	Framebuffer int

	// Mem1D is the total 1D tiler memory the composable layers would
	// consume if every one of them got an overlay.
	Mem1D int
}

// validLayer reports whether the overlay hardware can scan out the layer at
// all. Layers failing this test always go to the GPU.
func (c *Compositor) validLayer(layer *Layer) bool {
	if layer.Skip || layer.Buffer == nil {
		return false
	}
	if !layer.Buffer.Format.Valid() {
		return false
	}
	// Non-NV12 buffers live in 1D tiler space. The DSS cannot rotate
	// them, and each must fit in a single tiler slot.
	if !layer.isNV12() {
		if layer.Transform != 0 {
			return false
		}
		if layer.mem1D() > c.limits.TilerSlotBytes {
			return false
		}
	}
	return true
}

// gatherStatistics classifies a layer list and tallies the statistics the
// allocator and planner run on. A mirroring display is measured against the
// primary's contents, so the list is passed in rather than taken from d.
// Every non-target layer is reset to GPU composition here; the planner
// promotes layers back to overlays as it claims pipelines for them.
func (c *Compositor) gatherStatistics(d *Display, contents *FrameContents) {
	var stats LayerStatistics

	if contents != nil {
		for _, layer := range contents.Layers {
			if layer.Composition == CompositionTarget {
				stats.Framebuffer++
				continue
			}
			layer.Composition = CompositionGPU
			layer.Hints = 0

			if !c.validLayer(layer) {
				continue
			}
			stats.Composable++
			if layer.Scaled() || layer.isNV12() {
				stats.Scaled++
			}
			switch {
			case layer.Buffer.Format.BGROrder():
				stats.BGR++
			case layer.Buffer.Format.RGBOrder():
				stats.RGB++
			}
			if layer.isNV12() {
				stats.NV12++
			}
			if layer.Dockable {
				stats.Dockable++
			}
			if layer.Protected {
				stats.Protected++
			}
			stats.Mem1D += layer.mem1D()
		}
		stats.Count = len(contents.Layers) - stats.Framebuffer
	}

	d.stats = stats
}
