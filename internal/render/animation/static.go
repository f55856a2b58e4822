package animation

import (
	"fmt"
	"image"

	"github.com/matjam/wallfade/internal/render"
)

// Static shows a single texture. It draws once per surface configuration
// and is finished after its first successful present.
type Static struct {
	cfg      Config
	texture  *render.Texture
	pipeline render.Pipeline
	group    render.BindGroup

	rendered   bool
	generation uint64
}

// NewStatic takes ownership of tex.
func NewStatic(ctx *render.Context, tex *render.Texture, cfg Config) (*Static, error) {
	p, err := ctx.Device().CreatePipeline(render.ProgramStatic, ctx.ScalingMode())
	if err != nil {
		return nil, fmt.Errorf("failed to create static pipeline: %w", err)
	}
	g, err := p.Bind(tex)
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to bind texture: %w", err)
	}
	return &Static{
		cfg:      cfg.withDefaults(),
		texture:  tex,
		pipeline: p,
		group:    g,
	}, nil
}

func (s *Static) animation() {}

func (s *Static) Render(ctx *render.Context) (Outcome, error) {
	if s.rendered && s.generation == ctx.Generation() {
		return Skipped, nil
	}
	frame, err := acquire(ctx, s.cfg.Logger)
	if err != nil {
		return 0, err
	}
	if frame == nil {
		return Unavailable, nil
	}

	arr := aspectCorrection(ctx, s.texture)
	if err := s.pipeline.Draw(frame, s.group, render.Uniform{SurfaceToFrom: arr, SurfaceToTo: arr}); err != nil {
		return 0, fmt.Errorf("failed to draw: %w", err)
	}
	ok, err := present(ctx, s.cfg.Logger, frame)
	if err != nil {
		return 0, err
	}
	if !ok {
		return Unavailable, nil
	}
	s.rendered = true
	s.generation = ctx.Generation()
	return Presented, nil
}

// UpdateImage hands the texture on screen to a new Fade towards img.
func (s *Static) UpdateImage(ctx *render.Context, img image.Image) (Animation, error) {
	to, err := render.NewTexture(ctx, img)
	if err != nil {
		return s, err
	}
	f, err := NewFade(ctx, s.texture, to, s.cfg)
	if err != nil {
		to.Release()
		return s, err
	}
	s.group.Release()
	s.pipeline.Release()
	s.group, s.pipeline, s.texture = nil, nil, nil
	return f, nil
}

func (s *Static) IsFinished() bool { return s.rendered }

func (s *Static) Release() {
	if s.group != nil {
		s.group.Release()
		s.group = nil
	}
	if s.pipeline != nil {
		s.pipeline.Release()
		s.pipeline = nil
	}
	s.texture.Release()
	s.texture = nil
}
