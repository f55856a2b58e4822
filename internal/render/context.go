package render

import (
	"errors"
	"fmt"

	"github.com/matjam/wallfade/internal/types"
)

// Context is the rendering context: the device, the surface it presents to
// and the settings shared by every animation. It is owned by a single
// goroutine and handed to animations by reference.
type Context struct {
	device  Device
	surface Surface

	sampler   Sampler
	scaleMode types.ScalingMode

	width, height int
	generation    uint64 // bumped on every successful Resize
}

// Option configures a Context.
type Option func(*Context)

// WithSampler sets the sampler used for new textures.
func WithSampler(s Sampler) Option {
	return func(c *Context) { c.sampler = s }
}

// WithScalingMode sets how textures are placed on the surface.
func WithScalingMode(m types.ScalingMode) Option {
	return func(c *Context) { c.scaleMode = m }
}

// NewContext wraps device and surface.
func NewContext(device Device, surface Surface, opts ...Option) *Context {
	c := &Context{
		device:    device,
		surface:   surface,
		sampler:   Sampler{Filter: FilterLinear},
		scaleMode: types.ScalingModeFill,
	}
	for _, o := range opts {
		o(c)
	}
	c.width, c.height = surface.Size()
	return c
}

func (c *Context) Device() Device                 { return c.device }
func (c *Context) Surface() Surface               { return c.surface }
func (c *Context) Sampler() Sampler               { return c.sampler }
func (c *Context) ScalingMode() types.ScalingMode { return c.scaleMode }

// Size returns the configured surface size.
func (c *Context) Size() (int, int) {
	return c.width, c.height
}

// Generation identifies the current surface contents. It changes every
// time the surface is resized or invalidated.
func (c *Context) Generation() uint64 {
	return c.generation
}

// Invalidate marks the presented contents as stale without changing the
// surface size.
func (c *Context) Invalidate() {
	c.generation++
}

// SurfaceAspectRatio returns width/height of the surface.
func (c *Context) SurfaceAspectRatio() float32 {
	if c.height == 0 {
		return 1
	}
	return float32(c.width) / float32(c.height)
}

// Resize reconfigures the surface to width×height.
func (c *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if err := c.surface.Configure(width, height); err != nil {
		return fmt.Errorf("failed to configure surface: %w", err)
	}
	c.width, c.height = width, height
	c.generation++
	return nil
}

// Close releases the surface and the device.
func (c *Context) Close() error {
	return errors.Join(c.surface.Close(), c.device.Close())
}
