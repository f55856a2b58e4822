package ipc

import (
	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/matjam/wallfade/internal/middleware"
)

// NewEcho returns the control API handler.
func NewEcho(m Manager, info Info, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.CharmLog(logger))

	e.GET("/status", statusHandler(m, info))
	e.POST("/stop", stopHandler(m))
	e.POST("/next", nextHandler(m))
	e.POST("/load", loadHandler(m))
	return e
}
