package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/labstack/echo/v4"
)

// ErrAlreadyRunning is returned by Listen when another daemon holds the
// instance lock.
var ErrAlreadyRunning = errors.New("wallfade is already running")

// Server serves the control API on a unix socket.
type Server struct {
	echo   *echo.Echo
	lock   *flock.Flock
	socket string
	logger *log.Logger
}

// Listen takes the instance lock and binds info.Socket. A stale socket
// left behind by a dead daemon is replaced.
func Listen(m Manager, info Info, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	lock := flock.New(LockPath(info.Socket))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", lock.Path(), err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	if _, err := os.Stat(info.Socket); err == nil {
		_ = os.Remove(info.Socket)
	}
	listener, err := net.Listen("unix", info.Socket)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to listen on %s: %w", info.Socket, err)
	}

	e := NewEcho(m, info, logger)
	e.Listener = listener
	return &Server{echo: e, lock: lock, socket: info.Socket, logger: logger}, nil
}

// Serve handles requests until Shutdown is called.
func (s *Server) Serve() error {
	s.logger.Debug("control socket listening", "path", s.socket)
	err := s.echo.StartServer(s.echo.Server)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server, removes the socket and releases the lock.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	if rerr := os.Remove(s.socket); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		err = errors.Join(err, rerr)
	}
	return errors.Join(err, s.lock.Unlock())
}
