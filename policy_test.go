package hwc

import "testing"

func TestBlitPolicyString(t *testing.T) {
	tests := []struct {
		policy BlitPolicy
		want   string
	}{
		{BlitDisabled, "disabled"},
		{BlitDefault, "default"},
		{BlitAll, "all"},
		{BlitPolicy(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.policy.String(); got != tt.want {
			t.Errorf("BlitPolicy(%d).String() = %q, want %q", tt.policy, got, tt.want)
		}
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if !p.RGBOrder {
		t.Error("RGBOrder off")
	}
	if p.Blit != BlitDisabled {
		t.Errorf("Blit = %v, want disabled until a blitter is wired", p.Blit)
	}
	if p.UpscaledNV12Limit != 2 {
		t.Errorf("UpscaledNV12Limit = %v, want 2", p.UpscaledNV12Limit)
	}
	if p.IdleTimeout <= 0 {
		t.Error("idle detection disabled by default")
	}
	if !p.AvoidModeChange {
		t.Error("AvoidModeChange off")
	}
	if !p.Mirror.Enabled || p.Mirror.Rotation != 0 {
		t.Errorf("Mirror = %+v, want enabled and unrotated", p.Mirror)
	}
}
