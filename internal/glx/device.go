package glx

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/matjam/wallfade/internal/render"
	"github.com/matjam/wallfade/internal/types"
)

const vertexShader = `
varying vec2 v_uv;

void main() {
    v_uv = gl_MultiTexCoord0.xy;
    gl_Position = gl_Vertex;
}
`

// The fragment shader samples each texture around the centre of the
// surface. Coordinates outside the texture are letterbox and drawn black.
const fragmentShader = `
uniform sampler2D u_from;
uniform vec2 u_scale_from;
uniform float u_flip_from;
#ifdef FADE
uniform sampler2D u_to;
uniform vec2 u_scale_to;
uniform float u_flip_to;
uniform float u_alpha;
#endif
varying vec2 v_uv;

vec4 fetch(sampler2D tex, vec2 scale, float flip) {
    vec2 uv = (v_uv - 0.5) * scale + 0.5;
    if (uv.x < 0.0 || uv.x > 1.0 || uv.y < 0.0 || uv.y > 1.0) {
        return vec4(0.0, 0.0, 0.0, 1.0);
    }
    if (flip > 0.5) {
        uv.y = 1.0 - uv.y;
    }
    return texture2D(tex, uv);
}

void main() {
    vec4 c = fetch(u_from, u_scale_from, u_flip_from);
#ifdef FADE
    c = mix(c, fetch(u_to, u_scale_to, u_flip_to), u_alpha);
#endif
    gl_FragColor = vec4(c.rgb, 1.0);
}
`

type device struct {
	s *Surface
}

func newDevice(s *Surface) *device {
	return &device{s: s}
}

type texture struct {
	s       *Surface
	id      uint32
	w, h    int
	smp     render.Sampler
	flipped bool // rows are stored bottom up, as read back from the framebuffer
}

func (t *texture) Release() {
	if t.id == 0 {
		return
	}
	if t.s.live() {
		gl.DeleteTextures(1, &t.id)
	}
	t.id = 0
}

// CreateTexture uploads img. Scaled-down sampling goes through mipmaps
// unless the sampler asks for nearest filtering.
func (d *device) CreateTexture(img *image.RGBA, smp render.Sampler) (render.TextureHandle, error) {
	if !d.s.live() {
		return nil, render.ErrSurfaceClosed
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image %v", b)
	}
	if b.Min != (image.Point{}) {
		img = render.ToRGBA(img)
	}

	t := &texture{s: d.s, w: b.Dx(), h: b.Dy(), smp: smp}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(t.w), int32(t.h), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	setSampler(smp, true)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &t.id)
		return nil, fmt.Errorf("texture upload failed: GL error 0x%x", code)
	}
	return t, nil
}

// setSampler configures the bound texture. mipmaps are generated when asked
// for and the filter is not nearest.
func setSampler(smp render.Sampler, mipmaps bool) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if smp.Filter == render.FilterNearest {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		return
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if mipmaps {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.GenerateMipmap(gl.TEXTURE_2D)
		return
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
}

func (d *device) CreatePipeline(p render.Program, mode types.ScalingMode) (render.Pipeline, error) {
	if !d.s.live() {
		return nil, render.ErrSurfaceClosed
	}
	var defines string
	switch p {
	case render.ProgramStatic:
	case render.ProgramFade:
		defines = "#define FADE\n"
	default:
		return nil, fmt.Errorf("unsupported program %v", p)
	}

	prog, err := compileProgram(vertexShader, defines+fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("%v pipeline: %w", p, err)
	}
	d.s.programs = append(d.s.programs, prog)

	pl := &pipeline{s: d.s, program: p, mode: mode, id: prog}
	pl.from = uniformSet(prog, "from")
	if p == render.ProgramFade {
		pl.to = uniformSet(prog, "to")
		pl.alpha = gl.GetUniformLocation(prog, gl.Str("u_alpha\x00"))
	}
	return pl, nil
}

// Close is a no-op; everything the device created lives in the surface's
// GL context and goes away with it.
func (d *device) Close() error { return nil }

type slotUniforms struct {
	sampler, scale, flip int32
}

func uniformSet(prog uint32, name string) slotUniforms {
	loc := func(n string) int32 {
		return gl.GetUniformLocation(prog, gl.Str("u_"+n+"_"+name+"\x00"))
	}
	return slotUniforms{
		sampler: gl.GetUniformLocation(prog, gl.Str("u_"+name+"\x00")),
		scale:   loc("scale"),
		flip:    loc("flip"),
	}
}

type pipeline struct {
	s       *Surface
	program render.Program
	mode    types.ScalingMode
	id      uint32

	from, to slotUniforms
	alpha    int32
}

type bindGroup struct {
	textures []*texture
}

func (g *bindGroup) Release() { g.textures = nil }

func (p *pipeline) Bind(textures ...*render.Texture) (render.BindGroup, error) {
	if p.id == 0 {
		return nil, errors.New("pipeline released")
	}
	if len(textures) != p.program.Slots() {
		return nil, fmt.Errorf("%v pipeline takes %d textures, got %d", p.program, p.program.Slots(), len(textures))
	}
	g := &bindGroup{textures: make([]*texture, len(textures))}
	for i, t := range textures {
		h, ok := t.Handle().(*texture)
		if !ok || h.id == 0 {
			return nil, fmt.Errorf("texture %d is not a live GL texture", i)
		}
		g.textures[i] = h
	}
	return g, nil
}

func (p *pipeline) Draw(f render.Frame, group render.BindGroup, u render.Uniform) error {
	fr, ok := f.(*frame)
	if !ok {
		return fmt.Errorf("GL pipeline cannot draw into %T", f)
	}
	return p.draw(group, u, fr.w, fr.h)
}

// Capture draws into the back buffer and copies the result into a new
// texture. The back buffer is redrawn before the next present.
func (p *pipeline) Capture(group render.BindGroup, u render.Uniform, width, height int) (render.TextureHandle, error) {
	if width > p.s.width || height > p.s.height {
		return nil, fmt.Errorf("capture %dx%d exceeds surface %dx%d", width, height, p.s.width, p.s.height)
	}
	if err := p.draw(group, u, width, height); err != nil {
		return nil, err
	}

	smp := group.(*bindGroup).textures[0].smp
	t := &texture{s: p.s, w: width, h: height, smp: smp, flipped: true}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.ReadBuffer(gl.BACK)
	gl.CopyTexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 0, 0, int32(width), int32(height), 0)
	setSampler(smp, false)
	gl.Viewport(0, 0, int32(p.s.width), int32(p.s.height))
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &t.id)
		return nil, fmt.Errorf("capture failed: GL error 0x%x", code)
	}
	return t, nil
}

func (p *pipeline) Release() {
	if p.id == 0 {
		return
	}
	if p.s.live() {
		gl.DeleteProgram(p.id)
		for i, id := range p.s.programs {
			if id == p.id {
				p.s.programs = append(p.s.programs[:i], p.s.programs[i+1:]...)
				break
			}
		}
	}
	p.id = 0
}

func (p *pipeline) draw(group render.BindGroup, u render.Uniform, w, h int) error {
	if !p.s.live() {
		return render.ErrSurfaceClosed
	}
	if p.id == 0 {
		return errors.New("pipeline released")
	}
	g, ok := group.(*bindGroup)
	if !ok || len(g.textures) != p.program.Slots() {
		return errors.New("invalid bind group")
	}
	for i, t := range g.textures {
		if t.id == 0 {
			return fmt.Errorf("texture %d released", i)
		}
	}

	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(p.id)
	p.bindSlot(0, p.from, g.textures[0], u.SurfaceToFrom)
	if p.program == render.ProgramFade {
		p.bindSlot(1, p.to, g.textures[1], u.SurfaceToTo)
		gl.Uniform1f(p.alpha, u.Alpha)
	}
	drawQuad()
	gl.UseProgram(0)
	gl.ActiveTexture(gl.TEXTURE0)
	return nil
}

func (p *pipeline) bindSlot(unit int, loc slotUniforms, t *texture, arr float32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.Uniform1i(loc.sampler, int32(unit))
	sx, sy := render.SampleScale(p.mode, arr)
	gl.Uniform2f(loc.scale, sx, sy)
	var flip float32
	if t.flipped {
		flip = 1
	}
	gl.Uniform1f(loc.flip, flip)
}

// drawQuad covers the viewport. Texture row 0 is the top of the image.
func drawQuad() {
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.End()
}

func compileShader(src string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csrc, free := gl.Strs("#version 120\n" + src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(shader, n, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compile error: %s", strings.TrimRight(msg, "\x00"))
	}
	return shader, nil
}

func compileProgram(vsrc, fsrc string) (uint32, error) {
	vs, err := compileShader(vsrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(fsrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(prog, n, nil, gl.Str(msg))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", strings.TrimRight(msg, "\x00"))
	}
	return prog, nil
}
