package render

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/matjam/wallfade/internal/types"
)

// CPUDevice is a Device that keeps textures in memory and blends them on
// the CPU, spreading the per-pixel work over all available cores. It draws
// into any Frame that implements Canvas.
type CPUDevice struct{}

// NewCPUDevice returns a CPU device.
func NewCPUDevice() *CPUDevice {
	return &CPUDevice{}
}

// CreateTexture copies img into a new texture.
func (d *CPUDevice) CreateTexture(img *image.RGBA, s Sampler) (TextureHandle, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image %v", b)
	}
	pix := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(pix, image.Point{}, img, b, draw.Src, nil)
	return &cpuTexture{img: pix, sampler: s}, nil
}

// CreatePipeline returns a pipeline running program p.
func (d *CPUDevice) CreatePipeline(p Program, mode types.ScalingMode) (Pipeline, error) {
	if p != ProgramStatic && p != ProgramFade {
		return nil, fmt.Errorf("unsupported program %v", p)
	}
	return &cpuPipeline{program: p, mode: mode}, nil
}

func (d *CPUDevice) Close() error { return nil }

type cpuTexture struct {
	img     *image.RGBA
	sampler Sampler
}

func (t *cpuTexture) Release() { t.img = nil }

// resolveKey identifies a texture placed onto a surface of a given size.
type resolveKey struct {
	w, h int
	arr  float32
}

// cpuSlot caches a texture resolved to surface size, the CPU counterpart of
// sampling it in a shader.
type cpuSlot struct {
	tex      *cpuTexture
	key      resolveKey
	resolved *image.RGBA
}

type cpuBindGroup struct {
	slots []cpuSlot
}

func (g *cpuBindGroup) Release() { g.slots = nil }

type cpuPipeline struct {
	program  Program
	mode     types.ScalingMode
	released bool
}

func (p *cpuPipeline) Bind(textures ...*Texture) (BindGroup, error) {
	if p.released {
		return nil, errors.New("pipeline released")
	}
	if len(textures) != p.program.Slots() {
		return nil, fmt.Errorf("%v pipeline takes %d textures, got %d", p.program, p.program.Slots(), len(textures))
	}
	g := &cpuBindGroup{slots: make([]cpuSlot, len(textures))}
	for i, t := range textures {
		h, ok := t.Handle().(*cpuTexture)
		if !ok || h.img == nil {
			return nil, fmt.Errorf("texture %d is not a live CPU texture", i)
		}
		g.slots[i].tex = h
	}
	return g, nil
}

func (p *cpuPipeline) Draw(frame Frame, group BindGroup, u Uniform) error {
	c, ok := frame.(Canvas)
	if !ok {
		return fmt.Errorf("CPU pipeline cannot draw into %T", frame)
	}
	return p.render(c.RGBA(), group, u)
}

func (p *cpuPipeline) Capture(group BindGroup, u Uniform, width, height int) (TextureHandle, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := p.render(dst, group, u); err != nil {
		return nil, err
	}
	g := group.(*cpuBindGroup)
	return &cpuTexture{img: dst, sampler: g.slots[0].tex.sampler}, nil
}

func (p *cpuPipeline) Release() { p.released = true }

func (p *cpuPipeline) render(dst *image.RGBA, group BindGroup, u Uniform) error {
	if p.released {
		return errors.New("pipeline released")
	}
	g, ok := group.(*cpuBindGroup)
	if !ok || len(g.slots) != p.program.Slots() {
		return errors.New("invalid bind group")
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()

	from, err := g.slots[0].resolve(p.mode, u.SurfaceToFrom, w, h)
	if err != nil {
		return err
	}
	if p.program == ProgramStatic {
		copyRGBA(dst, from)
		return nil
	}
	to, err := g.slots[1].resolve(p.mode, u.SurfaceToTo, w, h)
	if err != nil {
		return err
	}
	return Blend(dst, from, to, u.Alpha)
}

func (s *cpuSlot) resolve(mode types.ScalingMode, arr float32, w, h int) (*image.RGBA, error) {
	key := resolveKey{w: w, h: h, arr: arr}
	if s.resolved != nil && s.key == key {
		return s.resolved, nil
	}
	src := s.tex.img
	if src == nil {
		return nil, errors.New("texture released")
	}

	dst := s.resolved
	if dst == nil || dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	srcRect, dstRect := Placement(mode, arr, src.Bounds(), w, h)
	if dstRect != dst.Rect {
		draw.Draw(dst, dst.Rect, image.Black, image.Point{}, draw.Src)
	}
	if srcRect.Size() == dstRect.Size() {
		draw.Copy(dst, dstRect.Min, src, srcRect, draw.Src, nil)
	} else {
		interpolator(s.tex.sampler.Filter).Scale(dst, dstRect, src, srcRect, draw.Src, nil)
	}

	s.resolved = dst
	s.key = key
	return dst, nil
}

func interpolator(f Filter) draw.Interpolator {
	switch f {
	case FilterNearest:
		return draw.NearestNeighbor
	case FilterCatmullRom:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}
