package render

import (
	"image"
	"testing"

	"github.com/matjam/wallfade/internal/types"
)

var placementTests = []struct {
	name    string
	mode    types.ScalingMode
	src     image.Rectangle
	w, h    int
	wantSrc image.Rectangle
	wantDst image.Rectangle
}{
	{
		name:    "fill_wide_surface_crops_height",
		mode:    types.ScalingModeFill,
		src:     image.Rect(0, 0, 100, 100),
		w:       200, h: 100,
		wantSrc: image.Rect(0, 25, 100, 75),
		wantDst: image.Rect(0, 0, 200, 100),
	},
	{
		name:    "fill_tall_surface_crops_width",
		mode:    types.ScalingModeFill,
		src:     image.Rect(0, 0, 200, 100),
		w:       100, h: 100,
		wantSrc: image.Rect(50, 0, 150, 100),
		wantDst: image.Rect(0, 0, 100, 100),
	},
	{
		name:    "fill_same_aspect",
		mode:    types.ScalingModeFill,
		src:     image.Rect(0, 0, 160, 90),
		w:       1920, h: 1080,
		wantSrc: image.Rect(0, 0, 160, 90),
		wantDst: image.Rect(0, 0, 1920, 1080),
	},
	{
		name:    "stretched",
		mode:    types.ScalingModeStretch,
		src:     image.Rect(0, 0, 100, 300),
		w:       200, h: 100,
		wantSrc: image.Rect(0, 0, 100, 300),
		wantDst: image.Rect(0, 0, 200, 100),
	},
	{
		name:    "center_letterboxes_sides",
		mode:    types.ScalingModeCenter,
		src:     image.Rect(0, 0, 100, 100),
		w:       200, h: 100,
		wantSrc: image.Rect(0, 0, 100, 100),
		wantDst: image.Rect(50, 0, 150, 100),
	},
	{
		name:    "center_letterboxes_top_bottom",
		mode:    types.ScalingModeCenter,
		src:     image.Rect(0, 0, 200, 100),
		w:       100, h: 100,
		wantSrc: image.Rect(0, 0, 200, 100),
		wantDst: image.Rect(0, 25, 100, 75),
	},
	{
		name:    "horizontal_fits_width",
		mode:    types.ScalingModeFitHorizontal,
		src:     image.Rect(0, 0, 200, 100),
		w:       100, h: 100,
		wantSrc: image.Rect(0, 0, 200, 100),
		wantDst: image.Rect(0, 25, 100, 75),
	},
	{
		name:    "vertical_fits_height",
		mode:    types.ScalingModeFitVertical,
		src:     image.Rect(0, 0, 200, 100),
		w:       100, h: 100,
		wantSrc: image.Rect(50, 0, 150, 100),
		wantDst: image.Rect(0, 0, 100, 100),
	},
	{
		name:    "offset_source",
		mode:    types.ScalingModeFill,
		src:     image.Rect(10, 10, 110, 110),
		w:       200, h: 100,
		wantSrc: image.Rect(10, 35, 110, 85),
		wantDst: image.Rect(0, 0, 200, 100),
	},
}

func TestPlacement(t *testing.T) {
	for _, test := range placementTests {
		t.Run(test.name, func(t *testing.T) {
			surface := float32(test.w) / float32(test.h)
			tex := float32(test.src.Dx()) / float32(test.src.Dy())
			gotSrc, gotDst := Placement(test.mode, surface/tex, test.src, test.w, test.h)
			if gotSrc != test.wantSrc {
				t.Errorf("unexpected source rectangle: got %v want %v", gotSrc, test.wantSrc)
			}
			if gotDst != test.wantDst {
				t.Errorf("unexpected destination rectangle: got %v want %v", gotDst, test.wantDst)
			}
		})
	}
}

func TestSampleScaleFillNeverLetterboxes(t *testing.T) {
	for _, arr := range []float32{0.1, 0.5, 0.99, 1, 1.01, 2, 10} {
		sx, sy := SampleScale(types.ScalingModeFill, arr)
		if sx > 1 || sy > 1 {
			t.Errorf("fill with arr %v gives scale (%v, %v), want both <= 1", arr, sx, sy)
		}
		sx, sy = SampleScale(types.ScalingModeCenter, arr)
		if sx < 1 || sy < 1 {
			t.Errorf("center with arr %v gives scale (%v, %v), want both >= 1", arr, sx, sy)
		}
	}
}

func TestSampleScaleInvalidCorrection(t *testing.T) {
	for _, arr := range []float32{0, -1} {
		sx, sy := SampleScale(types.ScalingModeFill, arr)
		if sx != 1 || sy != 1 {
			t.Errorf("arr %v gives scale (%v, %v), want (1, 1)", arr, sx, sy)
		}
	}
}
