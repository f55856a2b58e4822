package render

import "github.com/matjam/wallfade/internal/types"

// Ease maps linear progress t to the eased progress for mode. t is clamped
// to [0, 1] and the ends are exact: Ease(m, 0) == 0 and Ease(m, 1) == 1.
// Unknown modes fall back to ease-in-out.
func Ease(mode types.EasingMode, t float32) float32 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}

	switch mode {
	case types.EasingLinear:
		return t
	case types.EasingEaseIn:
		return t * t
	case types.EasingEaseOut:
		u := 1 - t
		return 1 - u*u
	default:
		if t < 0.5 {
			return 2 * t * t
		}
		// 1-t is exact on [0.5, 1].
		u := 1 - t
		return 1 - 2*u*u
	}
}
