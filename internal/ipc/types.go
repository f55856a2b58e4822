package ipc

import (
	"os"
	"path/filepath"

	"github.com/matjam/wallfade/internal/scheduler"
)

// Manager is the part of the scheduler the control API talks to.
type Manager interface {
	Enqueue(scheduler.Command) bool
	Status() scheduler.Status
}

// Info describes the running daemon in status responses.
type Info struct {
	Version string
	Socket  string
	Config  string
}

type StatusResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Version string           `json:"version"`
	PID     int              `json:"pid"`
	Socket  string           `json:"socket"`
	Config  string           `json:"config"`
	Loop    scheduler.Status `json:"loop"`
}

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Loaded int    `json:"loaded,omitempty"`
}

// SocketDir is $XDG_RUNTIME_DIR, or the temporary directory if unset.
func SocketDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// SocketPath is the default path of the control socket.
func SocketPath() string {
	return filepath.Join(SocketDir(), "wallfade.sock")
}

// LockPath returns the instance lock file belonging to socket.
func LockPath(socket string) string {
	return filepath.Join(filepath.Dir(socket), "wallfade.lock")
}
