// Package animation implements the wallpaper animations: a Static image and
// a Fade between two images. An Animation is owned by the scheduler loop and
// is never touched from any other goroutine.
package animation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matjam/wallfade/internal/render"
	"github.com/matjam/wallfade/internal/types"
)

// Outcome reports what a call to Render did.
type Outcome int

const (
	// Presented means a frame was drawn and committed to the surface.
	Presented Outcome = iota
	// Skipped means there was nothing new to draw.
	Skipped
	// Unavailable means the surface could not hand out a frame; the caller
	// should retry on its next tick.
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Presented:
		return "presented"
	case Skipped:
		return "skipped"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Animation is the state machine drawing the wallpaper. The only
// implementations are *Static and *Fade.
type Animation interface {
	// Render draws the current frame and presents it. A returned error is
	// not recoverable.
	Render(ctx *render.Context) (Outcome, error)
	// UpdateImage starts a transition to img and returns the animation that
	// is active afterwards. On error the receiver is returned unchanged.
	UpdateImage(ctx *render.Context, img image.Image) (Animation, error)
	// IsFinished reports whether further renders would draw the same frame.
	IsFinished() bool
	// Release frees every device resource the animation owns.
	Release()

	animation()
}

// Config holds the settings shared by all animations.
type Config struct {
	Duration time.Duration
	Easing   types.EasingMode
	// FadeIn makes the first image fade in from black.
	FadeIn bool
	Clock  clockwork.Clock
	Logger *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Easing == "" {
		c.Easing = types.EasingEaseInOut
	}
	return c
}

// Start creates the first animation for img: a Fade from black when
// cfg.FadeIn is set, otherwise a Static.
func Start(ctx *render.Context, img image.Image, cfg Config) (Animation, error) {
	tex, err := render.NewTexture(ctx, img)
	if err != nil {
		return nil, err
	}
	if !cfg.FadeIn {
		s, err := NewStatic(ctx, tex, cfg)
		if err != nil {
			tex.Release()
			return nil, err
		}
		return s, nil
	}

	black, err := render.NewColorTexture(ctx, color.RGBA{A: 255})
	if err != nil {
		tex.Release()
		return nil, err
	}
	f, err := NewFade(ctx, black, tex, cfg)
	if err != nil {
		black.Release()
		tex.Release()
		return nil, err
	}
	return f, nil
}

// acquire fetches a frame, mapping a momentarily unavailable surface to
// (nil, nil).
func acquire(ctx *render.Context, logger *log.Logger) (render.Frame, error) {
	frame, err := ctx.Surface().Acquire()
	if errors.Is(err, render.ErrSurfaceUnavailable) {
		logger.Debug("surface unavailable, retrying next tick")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire frame: %w", err)
	}
	return frame, nil
}

// present commits frame, reporting whether it reached the screen.
func present(ctx *render.Context, logger *log.Logger, frame render.Frame) (bool, error) {
	err := ctx.Surface().Present(frame)
	if errors.Is(err, render.ErrSurfaceUnavailable) {
		logger.Debug("present failed, retrying next tick", "err", err)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to present frame: %w", err)
	}
	return true, nil
}

func aspectCorrection(ctx *render.Context, tex *render.Texture) float32 {
	return ctx.SurfaceAspectRatio() / tex.AspectRatio()
}
