package render

import (
	"math"
	"testing"

	"github.com/matjam/wallfade/internal/types"
)

var easingModes = []types.EasingMode{
	types.EasingLinear,
	types.EasingEaseIn,
	types.EasingEaseOut,
	types.EasingEaseInOut,
	"unknown",
}

func TestEaseEndpoints(t *testing.T) {
	for _, mode := range easingModes {
		if got := Ease(mode, 0); got != 0 {
			t.Errorf("Ease(%q, 0) = %v, want 0", mode, got)
		}
		if got := Ease(mode, 1); got != 1 {
			t.Errorf("Ease(%q, 1) = %v, want 1", mode, got)
		}
		if got := Ease(mode, -0.5); got != 0 {
			t.Errorf("Ease(%q, -0.5) = %v, want 0", mode, got)
		}
		if got := Ease(mode, 1.5); got != 1 {
			t.Errorf("Ease(%q, 1.5) = %v, want 1", mode, got)
		}
	}
}

func TestEaseMonotonic(t *testing.T) {
	const steps = 10000
	for _, mode := range easingModes {
		prev := Ease(mode, 0)
		for i := 1; i <= steps; i++ {
			x := float32(i) / steps
			got := Ease(mode, x)
			if got < prev {
				t.Fatalf("Ease(%q) decreases at %v: %v < %v", mode, x, got, prev)
			}
			if got < 0 || got > 1 {
				t.Fatalf("Ease(%q, %v) = %v, out of [0, 1]", mode, x, got)
			}
			prev = got
		}
	}
}

// TestEaseMonotonicEveryFloat walks every float32 in [0.25, 1], where the
// curves flatten out and rounding is most likely to step backwards.
func TestEaseMonotonicEveryFloat(t *testing.T) {
	for _, mode := range easingModes {
		x := float32(0.25)
		prev := Ease(mode, x)
		for x < 1 {
			next := math.Nextafter32(x, 2)
			got := Ease(mode, next)
			if got < prev {
				t.Fatalf("Ease(%q, %v) = %v < Ease(%q, %v) = %v", mode, next, got, mode, x, prev)
			}
			x, prev = next, got
		}
		if prev != 1 {
			t.Errorf("Ease(%q, 1) = %v, want 1", mode, prev)
		}
	}
}

func TestEaseNearEnd(t *testing.T) {
	for _, mode := range []types.EasingMode{types.EasingEaseOut, types.EasingEaseInOut} {
		a, b := Ease(mode, 0.9), Ease(mode, 0.90000004)
		if b < a {
			t.Errorf("Ease(%q, 0.90000004) = %v < Ease(%q, 0.9) = %v", mode, b, mode, a)
		}
	}
}

func TestEaseInOutShape(t *testing.T) {
	if got := Ease(types.EasingEaseInOut, 0.5); got != 0.5 {
		t.Errorf("Ease(ease-in-out, 0.5) = %v, want 0.5", got)
	}
	// Slow at both ends compared to linear.
	if got := Ease(types.EasingEaseInOut, 0.1); got >= 0.1 {
		t.Errorf("Ease(ease-in-out, 0.1) = %v, want < 0.1", got)
	}
	if got := Ease(types.EasingEaseInOut, 0.9); got <= 0.9 {
		t.Errorf("Ease(ease-in-out, 0.9) = %v, want > 0.9", got)
	}
}
