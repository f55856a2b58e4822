package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Texture is a device-resident image together with its sampling
// configuration. Textures are immutable; replacing an image means creating
// a new texture and releasing the old one.
type Texture struct {
	handle  TextureHandle
	sampler Sampler
	width   int
	height  int
}

// NewTexture uploads img to the context's device.
func NewTexture(ctx *Context, img image.Image) (*Texture, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image %v", b)
	}
	rgba := ToRGBA(img)
	h, err := ctx.Device().CreateTexture(rgba, ctx.Sampler())
	if err != nil {
		return nil, fmt.Errorf("failed to create texture: %w", err)
	}
	return &Texture{handle: h, sampler: ctx.Sampler(), width: b.Dx(), height: b.Dy()}, nil
}

// NewColorTexture creates a small texture filled with c.
func NewColorTexture(ctx *Context, c color.RGBA) (*Texture, error) {
	const w, h = 2, 2
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return NewTexture(ctx, img)
}

// WrapTexture adopts a handle produced by the device, e.g. by
// Pipeline.Capture.
func WrapTexture(h TextureHandle, s Sampler, width, height int) *Texture {
	return &Texture{handle: h, sampler: s, width: width, height: height}
}

func (t *Texture) Handle() TextureHandle { return t.handle }
func (t *Texture) Sampler() Sampler      { return t.sampler }

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

// AspectRatio returns width/height.
func (t *Texture) AspectRatio() float32 {
	if t.height == 0 {
		return 1
	}
	return float32(t.width) / float32(t.height)
}

// Release frees the device handle. It is safe to call more than once.
func (t *Texture) Release() {
	if t == nil || t.handle == nil {
		return
	}
	t.handle.Release()
	t.handle = nil
}

// ToRGBA returns img as an *image.RGBA with its origin at (0, 0), copying
// only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
