package animation

import (
	"fmt"
	"image"
	"time"

	"github.com/matjam/wallfade/internal/render"
)

// Fade cross-fades from one texture to another over Config.Duration. The
// clock starts with the first frame that could be acquired, so a fade is
// never partly spent while the surface is unavailable.
type Fade struct {
	cfg      Config
	from, to *render.Texture
	pipeline render.Pipeline
	group    render.BindGroup

	start    time.Time
	progress float32

	// last is the uniform of the last presented frame; presented is false
	// until a frame of the current transition has reached the screen.
	last      render.Uniform
	presented bool
	done      bool
}

// NewFade takes ownership of from and to.
func NewFade(ctx *render.Context, from, to *render.Texture, cfg Config) (*Fade, error) {
	p, err := ctx.Device().CreatePipeline(render.ProgramFade, ctx.ScalingMode())
	if err != nil {
		return nil, fmt.Errorf("failed to create fade pipeline: %w", err)
	}
	g, err := p.Bind(from, to)
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to bind textures: %w", err)
	}
	return &Fade{
		cfg:      cfg.withDefaults(),
		from:     from,
		to:       to,
		pipeline: p,
		group:    g,
	}, nil
}

func (f *Fade) animation() {}

// Progress returns the linear progress of the transition in [0, 1].
func (f *Fade) Progress() float32 { return f.progress }

func (f *Fade) advance() float32 {
	now := f.cfg.Clock.Now()
	if f.start.IsZero() {
		f.start = now
	}
	p := float32(1)
	if f.cfg.Duration > 0 {
		p = float32(float64(now.Sub(f.start)) / float64(f.cfg.Duration))
		p = min(max(p, 0), 1)
	}
	f.progress = max(f.progress, p)
	return f.progress
}

func (f *Fade) uniform(ctx *render.Context, alpha float32) render.Uniform {
	return render.Uniform{
		Alpha:         alpha,
		SurfaceToFrom: aspectCorrection(ctx, f.from),
		SurfaceToTo:   aspectCorrection(ctx, f.to),
	}
}

func (f *Fade) Render(ctx *render.Context) (Outcome, error) {
	frame, err := acquire(ctx, f.cfg.Logger)
	if err != nil {
		return 0, err
	}
	if frame == nil {
		return Unavailable, nil
	}

	p := f.advance()
	u := f.uniform(ctx, render.Ease(f.cfg.Easing, p))
	if err := f.pipeline.Draw(frame, f.group, u); err != nil {
		return 0, fmt.Errorf("failed to draw: %w", err)
	}
	ok, err := present(ctx, f.cfg.Logger, frame)
	if err != nil {
		return 0, err
	}
	if !ok {
		return Unavailable, nil
	}
	f.last = u
	f.presented = true
	if p >= 1 {
		f.done = true
	}
	return Presented, nil
}

// UpdateImage restarts the fade towards img, starting from whatever is on
// screen right now, and returns the receiver.
func (f *Fade) UpdateImage(ctx *render.Context, img image.Image) (Animation, error) {
	to, err := render.NewTexture(ctx, img)
	if err != nil {
		return f, err
	}

	var from *render.Texture
	var superseded []*render.Texture
	captured := false
	switch {
	case !f.presented:
		from = f.from
		superseded = []*render.Texture{f.to}
	case f.last.Alpha >= 1:
		from = f.to
		superseded = []*render.Texture{f.from}
	default:
		w, h := ctx.Size()
		handle, err := f.pipeline.Capture(f.group, f.uniform(ctx, f.last.Alpha), w, h)
		if err != nil {
			to.Release()
			return f, fmt.Errorf("failed to capture frame: %w", err)
		}
		from = render.WrapTexture(handle, ctx.Sampler(), w, h)
		superseded = []*render.Texture{f.from, f.to}
		captured = true
	}

	g, err := f.pipeline.Bind(from, to)
	if err != nil {
		to.Release()
		if captured {
			from.Release()
		}
		return f, fmt.Errorf("failed to bind textures: %w", err)
	}
	f.group.Release()
	f.group = g
	for _, t := range superseded {
		t.Release()
	}

	f.from, f.to = from, to
	f.start = time.Time{}
	f.progress = 0
	f.last = render.Uniform{}
	f.presented = false
	f.done = false
	return f, nil
}

// IsFinished reports whether the final frame, with the target image fully
// opaque, has been presented.
func (f *Fade) IsFinished() bool { return f.done }

func (f *Fade) Release() {
	if f.group != nil {
		f.group.Release()
		f.group = nil
	}
	if f.pipeline != nil {
		f.pipeline.Release()
		f.pipeline = nil
	}
	f.from.Release()
	f.to.Release()
	f.from, f.to = nil, nil
}
