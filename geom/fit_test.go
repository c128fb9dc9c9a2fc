// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "testing"

func TestAspectFit(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		pixelAspect  float64
		sinkW, sinkH int
		physW, physH int
		wantW, wantH int
	}{
		{
			name: "same aspect fills sink",
			srcW: 1024, srcH: 768, pixelAspect: 1,
			sinkW: 1024, sinkH: 768,
			wantW: 1024, wantH: 768,
		},
		{
			name: "wide source letterboxed",
			srcW: 1280, srcH: 720, pixelAspect: 1,
			sinkW: 1024, sinkH: 768,
			wantW: 1024, wantH: 576,
		},
		{
			name: "narrow source pillarboxed",
			srcW: 1024, srcH: 768, pixelAspect: 1,
			sinkW: 1920, sinkH: 1080,
			wantW: 1440, wantH: 1080,
		},
		{
			// 1366x768 on a 1360x768 sink is off by 0.4%, inside the
			// tolerance band, so no scaling is forced.
			name: "near match within tolerance",
			srcW: 1366, srcH: 768, pixelAspect: 1,
			sinkW: 1360, sinkH: 768,
			wantW: 1360, wantH: 768,
		},
		{
			// An anamorphic 720x480 sink that is physically 16:9 has
			// non-square pixels; square content shrinks accordingly.
			name: "non-square sink pixels",
			srcW: 640, srcH: 480, pixelAspect: 1,
			sinkW: 720, sinkH: 480, physW: 160, physH: 90,
			wantW: 540, wantH: 480,
		},
		{
			// A source with wide pixels appears wider than its pixel count.
			name: "source pixel aspect",
			srcW: 720, srcH: 480, pixelAspect: 4.0 / 3.0,
			sinkW: 1920, sinkH: 1080,
			wantW: 1920, wantH: 960,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := AspectFit(tt.srcW, tt.srcH, tt.pixelAspect,
				tt.sinkW, tt.sinkH, tt.physW, tt.physH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("AspectFit(%dx%d) in %dx%d = %dx%d, want %dx%d",
					tt.srcW, tt.srcH, tt.sinkW, tt.sinkH, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
