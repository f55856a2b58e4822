package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/viper"

	"github.com/matjam/wallfade"
	"github.com/matjam/wallfade/internal/cli/cmd/utils"
	"github.com/matjam/wallfade/internal/config"
	"github.com/matjam/wallfade/internal/ipc"
	"github.com/matjam/wallfade/internal/loader"
	"github.com/matjam/wallfade/internal/render"
	"github.com/matjam/wallfade/internal/render/animation"
	"github.com/matjam/wallfade/internal/scheduler"
)

// StartDaemon runs the wallpaper daemon in the calling goroutine until it
// is stopped. dir overrides the configured wallpaper directory when set.
// Startup failures are fatal.
func StartDaemon(dir string) {
	if daemon.WasReborn() {
		setupRotatingLogger()
	}
	log.Infof("StartDaemon() started in PID: %d", os.Getpid())

	settings, err := config.FromViper(viper.GetViper())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if dir != "" {
		settings.Wallpapers = dir
	}
	dir = utils.CanonicalPath(settings.Wallpapers)
	if info, err := os.Stat(dir); err != nil {
		log.Fatalf("Error reading wallpapers directory: %v", err)
	} else if !info.IsDir() {
		log.Fatalf("%s is not a directory", dir)
	}

	socket := ipc.SocketPath()
	if _, err := ipc.NewClient(socket).Status(); err == nil {
		log.Infof("wallfade is already running, exiting")
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	device, surface, err := render.OpenBackend(settings.Backend, render.BackendOptions{})
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", settings.Backend, err)
	}
	rctx := render.NewContext(device, surface,
		render.WithSampler(render.Sampler{Filter: settings.Filter}),
		render.WithScalingMode(settings.ScaleMode),
	)
	w, h := rctx.Size()
	log.Infof("Using %s backend at %dx%d", settings.Backend, w, h)

	log.Info("Searching for images ...")
	src := loader.NewDirectory(dir, loader.WithShuffle(settings.Shuffle))
	first, err := src.Next()
	if err != nil {
		rctx.Close()
		log.Fatalf("No wallpaper could be loaded: %v", err)
	}
	log.Infof("Found %d wallpapers in %s", src.Len(), dir)
	log.Infof("Shuffle: %v", settings.Shuffle)

	anim, err := animation.Start(rctx, first.RGBA, animation.Config{
		Duration: settings.FadeDuration(),
		Easing:   settings.Easing,
		FadeIn:   settings.FadeIn,
	})
	if err != nil {
		rctx.Close()
		log.Fatalf("Failed to show %s: %v", first.Path, err)
	}

	loop := scheduler.NewLoop(rctx, anim, src, scheduler.Config{
		Delay:         settings.DelayDuration(),
		Framerate:     settings.FramerateLimit,
		IdleFramerate: settings.IdleFramerate,
		Wallpaper:     first.Path,
	})

	srv, err := ipc.Listen(loop, ipc.Info{
		Version: wallfade.Version,
		Socket:  socket,
		Config:  viper.ConfigFileUsed(),
	}, log.Default())
	if err != nil {
		anim.Release()
		rctx.Close()
		log.Fatalf("Failed to start control socket: %v", err)
	}
	go func() {
		log.Infof("Starting socket server on %s", socket)
		if err := srv.Serve(); err != nil {
			log.Errorf("Socket server error: %v", err)
		}
	}()

	go func() {
		if err := src.Watch(ctx); err != nil {
			log.Warnf("Not watching %s for changes: %v", dir, err)
		}
	}()

	runErr := loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Failed to shut down socket server: %v", err)
	}

	if runErr != nil {
		if errors.Is(runErr, render.ErrSurfaceClosed) {
			log.Fatalf("Display connection lost: %v", runErr)
		}
		log.Fatalf("wallfade failed: %v", runErr)
	}
	log.Infof("wallfade exited")
}

func setupRotatingLogger() {
	logDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "wallfade")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Fatalf("failed to create log directory: %v", err)
	}
	logPath := filepath.Join(logDir, "wallfade.log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	if !viper.GetBool("debug") {
		log.SetLevel(log.InfoLevel)
	}
}
