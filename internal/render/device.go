package render

import (
	"errors"
	"fmt"
	"image"
	"maps"
	"slices"
	"sync"

	"github.com/matjam/wallfade/internal/types"
)

var (
	// ErrSurfaceUnavailable is returned by Surface.Acquire when no frame can be
	// handed out right now, e.g. while the screen is being reconfigured. The
	// caller should retry on its next tick.
	ErrSurfaceUnavailable = errors.New("surface unavailable")

	// ErrSurfaceClosed is returned once the display connection is gone.
	ErrSurfaceClosed = errors.New("surface closed")

	// ErrDeviceLost is returned when the device can no longer execute work.
	ErrDeviceLost = errors.New("device lost")
)

// Program selects the shader program a pipeline runs.
type Program int

const (
	// ProgramStatic draws a single texture.
	ProgramStatic Program = iota
	// ProgramFade blends two textures by Uniform.Alpha.
	ProgramFade
)

func (p Program) String() string {
	switch p {
	case ProgramStatic:
		return "static"
	case ProgramFade:
		return "fade"
	default:
		return fmt.Sprintf("program(%d)", int(p))
	}
}

// Slots is the number of textures a bind group for p holds.
func (p Program) Slots() int {
	if p == ProgramFade {
		return 2
	}
	return 1
}

// Filter is the interpolation used when a texture is scaled onto the surface.
type Filter string

const (
	FilterLinear     Filter = "linear"
	FilterNearest    Filter = "nearest"
	FilterCatmullRom Filter = "catmull-rom"
)

// Valid reports whether f is a known filter.
func (f Filter) Valid() bool {
	switch f {
	case FilterLinear, FilterNearest, FilterCatmullRom:
		return true
	}
	return false
}

// Sampler is the sampling configuration owned by a texture. Textures are
// always clamped to their edges.
type Sampler struct {
	Filter Filter
}

// Uniform is the per-frame parameter block of a pipeline.
type Uniform struct {
	Alpha         float32 // mix weight of the "to" texture, 0..1
	SurfaceToFrom float32 // surface aspect / "from" texture aspect
	SurfaceToTo   float32 // surface aspect / "to" texture aspect
}

// TextureHandle is the device side of a texture.
type TextureHandle interface {
	Release()
}

// BindGroup binds a fixed set of textures to a pipeline.
type BindGroup interface {
	Release()
}

// Frame is a presentable buffer handed out by Surface.Acquire.
type Frame interface {
	Size() (int, int)
}

// Canvas is a frame backed by CPU memory.
type Canvas interface {
	Frame
	RGBA() *image.RGBA
}

// Pipeline draws textures bound in a BindGroup using one Program.
type Pipeline interface {
	// Bind builds a bind group holding textures in slot order.
	Bind(textures ...*Texture) (BindGroup, error)
	// Draw renders the bound textures into frame.
	Draw(frame Frame, group BindGroup, u Uniform) error
	// Capture renders the bound textures into a new width×height texture
	// without presenting anything.
	Capture(group BindGroup, u Uniform, width, height int) (TextureHandle, error)
	Release()
}

// Device creates the device-side resources used by animations.
type Device interface {
	CreateTexture(img *image.RGBA, s Sampler) (TextureHandle, error)
	CreatePipeline(p Program, mode types.ScalingMode) (Pipeline, error)
	Close() error
}

// Event is a notification from a surface to the loop that owns it.
type Event interface {
	surfaceEvent()
}

// Configure reports a new surface size. The previous frame is no longer
// valid and must be redrawn.
type Configure struct {
	Width, Height int
}

// Closed reports that the display connection went away.
type Closed struct {
	Err error
}

// Expose reports that the presented contents were lost, e.g. because the
// window was uncovered, and the current frame must be drawn again.
type Expose struct{}

func (Configure) surfaceEvent() {}
func (Expose) surfaceEvent()    {}
func (Closed) surfaceEvent()    {}

// Surface is the presentation target provided by the windowing layer.
type Surface interface {
	Size() (int, int)
	// Configure resizes the surface buffers.
	Configure(width, height int) error
	// Acquire returns the frame to draw the next image into.
	Acquire() (Frame, error)
	// Present marks the whole frame damaged and commits it.
	Present(Frame) error
	Events() <-chan Event
	Close() error
}

// BackendOptions are passed to a backend factory.
type BackendOptions struct {
	// Width and Height request a surface size; zero means the screen size.
	Width, Height int
}

// BackendFactory opens a device and the surface it presents to.
type BackendFactory func(BackendOptions) (Device, Surface, error)

var (
	backendsMu sync.Mutex
	backends   = map[string]BackendFactory{}
)

// RegisterBackend makes a presentation backend available by name. It is
// intended to be called from init functions.
func RegisterBackend(name string, f BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, dup := backends[name]; dup {
		panic("render: RegisterBackend called twice for " + name)
	}
	backends[name] = f
}

// Backends returns the names of the registered backends.
func Backends() []string {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	return slices.Sorted(maps.Keys(backends))
}

// OpenBackend opens the named backend.
func OpenBackend(name string, opts BackendOptions) (Device, Surface, error) {
	backendsMu.Lock()
	f, ok := backends[name]
	backendsMu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("unknown backend %q (available: %v)", name, Backends())
	}
	return f(opts)
}
