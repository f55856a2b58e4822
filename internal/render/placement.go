package render

import (
	"image"
	"math"

	"github.com/matjam/wallfade/internal/types"
)

// SampleScale returns, per axis, the fraction of a texture that is spread
// across the whole surface. arr is the aspect correction of the texture,
// surface aspect divided by texture aspect. A scale below 1 crops the
// centred part of the texture, a scale above 1 letterboxes the texture into
// the centred 1/scale of the surface.
func SampleScale(mode types.ScalingMode, arr float32) (sx, sy float32) {
	if !(arr > 0) || math.IsInf(float64(arr), 0) {
		arr = 1
	}
	switch mode {
	case types.ScalingModeStretch:
		return 1, 1
	case types.ScalingModeFitHorizontal:
		return 1, 1 / arr
	case types.ScalingModeFitVertical:
		return arr, 1
	case types.ScalingModeCenter:
		if arr > 1 {
			return arr, 1
		}
		return 1, 1 / arr
	default: // fill
		if arr >= 1 {
			return 1, 1 / arr
		}
		return arr, 1
	}
}

// Placement maps a texture with bounds src onto a w×h surface. It returns
// the part of the texture that is shown and the part of the surface it
// covers; surface pixels outside dst are black.
func Placement(mode types.ScalingMode, arr float32, src image.Rectangle, w, h int) (srcRect, dstRect image.Rectangle) {
	sx, sy := SampleScale(mode, arr)
	sx0, sx1, dx0, dx1 := placeAxis(float64(sx), src.Min.X, src.Dx(), w)
	sy0, sy1, dy0, dy1 := placeAxis(float64(sy), src.Min.Y, src.Dy(), h)
	return image.Rect(sx0, sy0, sx1, sy1), image.Rect(dx0, dy0, dx1, dy1)
}

func placeAxis(s float64, srcMin, srcLen, dstLen int) (s0, s1, d0, d1 int) {
	if s <= 1 {
		n := max(int(math.Round(float64(srcLen)*s)), 1)
		off := (srcLen - n) / 2
		return srcMin + off, srcMin + off + n, 0, dstLen
	}
	n := max(int(math.Round(float64(dstLen)/s)), 1)
	off := (dstLen - n) / 2
	return srcMin, srcMin + srcLen, off, off + n
}
