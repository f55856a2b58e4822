package render

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type countingHandle struct{ released int }

func (h *countingHandle) Release() { h.released++ }

func TestTextureReleaseIdempotent(t *testing.T) {
	h := &countingHandle{}
	tex := WrapTexture(h, Sampler{Filter: FilterNearest}, 4, 2)
	tex.Release()
	tex.Release()
	if h.released != 1 {
		t.Errorf("handle released %d times, want 1", h.released)
	}
	if tex.Handle() != nil {
		t.Error("handle still set after release")
	}

	var nilTex *Texture
	nilTex.Release()
}

func TestTextureAspectRatio(t *testing.T) {
	tex := WrapTexture(&countingHandle{}, Sampler{}, 1920, 1080)
	if got, want := tex.AspectRatio(), float32(1920)/1080; got != want {
		t.Errorf("AspectRatio() = %v, want %v", got, want)
	}
	w, h := tex.Size()
	if w != 1920 || h != 1080 {
		t.Errorf("Size() = %dx%d, want 1920x1080", w, h)
	}
}

func TestNewTextureRejectsEmpty(t *testing.T) {
	ctx, _ := newTestContext(t, 2, 2)
	if _, err := NewTexture(ctx, image.NewRGBA(image.Rectangle{})); err == nil {
		t.Error("expected error for empty image")
	}
	if _, err := NewTexture(ctx, nil); err == nil {
		t.Error("expected error for nil image")
	}
}

func TestNewTextureUsesContextSampler(t *testing.T) {
	ctx, _ := newTestContext(t, 2, 2, WithSampler(Sampler{Filter: FilterCatmullRom}))
	tex, err := NewColorTexture(ctx, color.RGBA{1, 2, 3, 255})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Sampler{Filter: FilterCatmullRom}, tex.Sampler()); diff != "" {
		t.Errorf("unexpected sampler (-want +got):\n%s", diff)
	}
}

func TestToRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(3, 3, 5, 4))
	gray.SetGray(3, 3, color.Gray{Y: 200})
	gray.SetGray(4, 3, color.Gray{Y: 50})

	got := ToRGBA(gray)
	if got.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("unexpected bounds %v", got.Rect)
	}
	want := []uint8{200, 200, 200, 255, 50, 50, 50, 255}
	if diff := cmp.Diff(want, got.Pix); diff != "" {
		t.Errorf("unexpected pixels (-want +got):\n%s", diff)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if ToRGBA(rgba) != rgba {
		t.Error("ToRGBA copied an image that was already RGBA")
	}
}

func TestContextInvalidate(t *testing.T) {
	ctx := NewContext(NewCPUDevice(), NewMemorySurface(4, 4))
	gen := ctx.Generation()
	ctx.Invalidate()
	if ctx.Generation() == gen {
		t.Error("generation unchanged after Invalidate")
	}
	if w, h := ctx.Size(); w != 4 || h != 4 {
		t.Errorf("size %dx%d after Invalidate, want 4x4", w, h)
	}
}

func TestContextResize(t *testing.T) {
	ctx, surface := newTestContext(t, 2, 2)
	gen := ctx.Generation()
	if err := ctx.Resize(8, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Generation() == gen {
		t.Error("generation unchanged after resize")
	}
	if w, h := surface.Size(); w != 8 || h != 4 {
		t.Errorf("surface size %dx%d, want 8x4", w, h)
	}
	if got := ctx.SurfaceAspectRatio(); got != 2 {
		t.Errorf("SurfaceAspectRatio() = %v, want 2", got)
	}
	if err := ctx.Resize(0, 4); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestBackendRegistry(t *testing.T) {
	RegisterBackend("memory-test", func(o BackendOptions) (Device, Surface, error) {
		return NewCPUDevice(), NewMemorySurface(o.Width, o.Height), nil
	})
	_, s, err := OpenBackend("memory-test", BackendOptions{Width: 3, Height: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, h := s.Size(); w != 3 || h != 2 {
		t.Errorf("surface size %dx%d, want 3x2", w, h)
	}
	if _, _, err := OpenBackend("nope", BackendOptions{}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestBackendsSorted(t *testing.T) {
	for _, name := range []string{"sorted-c", "sorted-a", "sorted-b"} {
		RegisterBackend(name, func(BackendOptions) (Device, Surface, error) {
			return nil, nil, errors.New("not openable")
		})
	}
	names := Backends()
	if !slices.IsSorted(names) {
		t.Errorf("Backends() = %v, not sorted", names)
	}
	for _, name := range []string{"sorted-a", "sorted-b", "sorted-c"} {
		if !slices.Contains(names, name) {
			t.Errorf("Backends() = %v, missing %q", names, name)
		}
	}
}
