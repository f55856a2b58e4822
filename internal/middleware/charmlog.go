// Package middleware holds echo middleware for the control API.
package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs every request at debug level, and failed requests at
// error level, to logger. A nil logger means log.Default().
func CharmLog(logger *log.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Error("request failed", append(fields, "err", err)...)
			} else {
				logger.Debug("request", fields...)
			}
			return nil
		}
	}
}
