// Package scheduler runs the wallpaper: a single goroutine that owns the
// render context and the active animation, and multiplexes surface events,
// control commands, image rotation and frame pacing.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matjam/wallfade/internal/loader"
	"github.com/matjam/wallfade/internal/render"
	"github.com/matjam/wallfade/internal/render/animation"
)

// ImageSource provides the wallpapers to rotate through.
type ImageSource interface {
	loader.Source
	// Load replaces the candidate images.
	Load(paths []string)
}

type Config struct {
	// Delay is the time between image changes.
	Delay time.Duration
	// Framerate and IdleFramerate are the redraw rates while animating and
	// while idle.
	Framerate     int
	IdleFramerate int
	// Wallpaper is the path of the image the initial animation shows.
	Wallpaper string
	Clock     clockwork.Clock
	Logger    *log.Logger
}

// Loop is the scheduler loop. All methods except Run are safe to call
// from other goroutines.
type Loop struct {
	rctx    *render.Context
	anim    animation.Animation
	src     ImageSource
	fetcher *loader.Fetcher
	frames  *FrameClock
	delay   time.Duration
	clock   clockwork.Clock
	logger  *log.Logger

	rotate clockwork.Ticker
	timer  clockwork.Timer
	cmds   chan Command

	mu     sync.Mutex
	status Status
}

// NewLoop returns a loop presenting anim through rctx. The loop takes
// ownership of both and releases them when Run returns.
func NewLoop(rctx *render.Context, anim animation.Animation, src ImageSource, cfg Config) *Loop {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 300 * time.Second
	}

	l := &Loop{
		rctx:    rctx,
		anim:    anim,
		src:     src,
		fetcher: loader.NewFetcher(src),
		frames:  NewFrameClock(cfg.Clock, cfg.Framerate, cfg.IdleFramerate),
		delay:   cfg.Delay,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		rotate:  cfg.Clock.NewTicker(cfg.Delay),
		timer:   cfg.Clock.NewTimer(0),
		cmds:    make(chan Command, 8),
	}
	l.status.Wallpaper = cfg.Wallpaper
	l.publish()
	return l
}

// Enqueue hands cmd to the loop. It returns false if the command queue is
// full.
func (l *Loop) Enqueue(cmd Command) bool {
	select {
	case l.cmds <- cmd:
		return true
	default:
		return false
	}
}

// Status returns a snapshot of the loop state.
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// CurrentWallpaper returns the path of the image being shown.
func (l *Loop) CurrentWallpaper() string {
	return l.Status().Wallpaper
}

// Run drives the wallpaper until ctx is done, a stop command arrives or
// the surface fails. Only surface and device failures are returned.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()

	l.logger.Info("starting wallpaper loop", "delay", l.delay, "fps", l.frames.FPS())
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping wallpaper loop")
			return nil

		case ev := <-l.rctx.Surface().Events():
			if err := l.handleEvent(ev); err != nil {
				return err
			}
			l.rearm()

		case cmd := <-l.cmds:
			if l.handleCommand(cmd) {
				l.logger.Info("stop requested")
				return nil
			}

		case <-l.rotate.Chan():
			l.requestImage()

		case res := <-l.fetcher.Results():
			l.apply(res)
			l.rearm()

		case <-l.timer.Chan():
			if err := l.tick(); err != nil {
				return err
			}
			l.timer.Reset(l.frames.Until())
		}
	}
}

// tick draws one frame if the frame clock allows it.
func (l *Loop) tick() error {
	select {
	case res := <-l.fetcher.Results():
		l.apply(res)
	default:
	}

	if !l.frames.Start() {
		return nil
	}
	out, err := l.anim.Render(l.rctx)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if l.anim.IsFinished() {
		if !l.frames.IsIdle() {
			l.logger.Debug("animation finished, idling", "fps", l.frames.idle)
		}
		l.frames.Idle()
	} else {
		l.frames.Active()
	}

	l.mu.Lock()
	if out == animation.Presented {
		l.status.Frames++
	}
	l.mu.Unlock()
	l.publish()
	return nil
}

// apply starts a transition to a fetched image.
func (l *Loop) apply(res loader.Result) {
	if res.Err != nil {
		l.logger.Error("failed to load wallpaper", "err", res.Err)
		return
	}
	next, err := l.anim.UpdateImage(l.rctx, res.Image.RGBA)
	if err != nil {
		l.logger.Error("failed to update wallpaper", "path", res.Image.Path, "err", err)
		return
	}
	l.anim = next
	l.frames.Active()

	b := res.Image.RGBA.Bounds()
	l.logger.Info("changing wallpaper", "path", res.Image.Path, "size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	l.mu.Lock()
	l.status.Wallpaper = res.Image.Path
	l.mu.Unlock()
	l.publish()
}

func (l *Loop) handleEvent(ev render.Event) error {
	switch ev := ev.(type) {
	case render.Configure:
		w, h := l.rctx.Size()
		if ev.Width == w && ev.Height == h {
			return nil
		}
		l.logger.Info("surface resized", "width", ev.Width, "height", ev.Height)
		if err := l.rctx.Resize(ev.Width, ev.Height); err != nil {
			l.logger.Error("resize failed", "err", err)
			return nil
		}
		l.frames.Active()
		l.frames.Reset()
		return l.tick()
	case render.Expose:
		l.logger.Debug("surface exposed, redrawing")
		l.rctx.Invalidate()
		l.frames.Active()
		l.frames.Reset()
		return l.tick()
	case render.Closed:
		if ev.Err != nil {
			return fmt.Errorf("%w: %w", render.ErrSurfaceClosed, ev.Err)
		}
		return render.ErrSurfaceClosed
	default:
		l.logger.Warn("unknown surface event", "event", fmt.Sprintf("%T", ev))
		return nil
	}
}

// handleCommand executes cmd and reports whether the loop should stop.
func (l *Loop) handleCommand(cmd Command) bool {
	switch cmd.Type {
	case CommandStop:
		return true
	case CommandNext:
		l.logger.Info("received next command")
		l.requestImage()
		l.rotate.Reset(l.delay)
	case CommandLoad:
		if len(cmd.Args) == 0 {
			l.logger.Error("no wallpapers specified for load command")
			return false
		}
		l.logger.Info("received load command", "count", len(cmd.Args))
		l.src.Load(cmd.Args)
		l.requestImage()
		l.rotate.Reset(l.delay)
	default:
		l.logger.Error("unknown command", "type", cmd.Type)
	}
	return false
}

func (l *Loop) requestImage() {
	if !l.fetcher.Request() {
		l.logger.Debug("image load already in progress")
	}
}

// rearm schedules the frame timer for the next frame deadline.
func (l *Loop) rearm() {
	l.timer.Stop()
	l.timer.Reset(l.frames.Until())
}

func (l *Loop) publish() {
	w, h := l.rctx.Size()
	kind := "static"
	if _, ok := l.anim.(*animation.Fade); ok {
		kind = "fade"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.Animation = kind
	l.status.Finished = l.anim.IsFinished()
	l.status.Width, l.status.Height = w, h
	l.status.FPS = l.frames.FPS()
	l.status.Idle = l.frames.IsIdle()
}

func (l *Loop) shutdown() {
	l.rotate.Stop()
	l.timer.Stop()
	l.fetcher.Stop()
	l.anim.Release()
	if err := l.rctx.Close(); err != nil && !errors.Is(err, render.ErrSurfaceClosed) {
		l.logger.Warn("failed to close render context", "err", err)
	}
	l.logger.Info("wallpaper loop stopped")
}
