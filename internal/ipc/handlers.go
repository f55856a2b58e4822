package ipc

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/matjam/wallfade/internal/scheduler"
)

// GET /status
func statusHandler(m Manager, info Info) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, StatusResponse{
			Status:  "ok",
			Message: "wallfade is running",
			Version: strings.TrimSpace(info.Version),
			PID:     os.Getpid(),
			Socket:  info.Socket,
			Config:  info.Config,
			Loop:    m.Status(),
		}, "  ")
	}
}

// POST /stop
func stopHandler(m Manager) echo.HandlerFunc {
	return enqueue(m, scheduler.CommandStop)
}

// POST /next
func nextHandler(m Manager) echo.HandlerFunc {
	return enqueue(m, scheduler.CommandNext)
}

func enqueue(m Manager, t scheduler.CommandType) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.Enqueue(scheduler.Command{Type: t}) {
			return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Error: "command queue full"})
		}
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /load
func loadHandler(m Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		var wallpapers []string
		if err := c.Bind(&wallpapers); err != nil {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Error: "invalid JSON array of wallpapers"})
		}
		if len(wallpapers) == 0 {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Error: "no wallpapers given"})
		}

		if !m.Enqueue(scheduler.Command{Type: scheduler.CommandLoad, Args: wallpapers}) {
			return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Error: "command queue full"})
		}
		return c.JSON(http.StatusOK, Response{Status: "ok", Loaded: len(wallpapers)})
	}
}
