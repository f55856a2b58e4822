package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

func TestCharmLog(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	e := echo.New()
	e.Use(CharmLog(logger))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/fail", func(c echo.Context) error { return errors.New("boom") })

	for _, test := range []struct {
		path   string
		status int
		want   string
	}{
		{"/ok", http.StatusOK, "request"},
		{"/fail", http.StatusInternalServerError, "request failed"},
	} {
		buf.Reset()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, test.path, nil))
		if rec.Code != test.status {
			t.Errorf("GET %s: status %d, want %d", test.path, rec.Code, test.status)
		}
		out := buf.String()
		if !strings.Contains(out, test.want) || !strings.Contains(out, test.path) {
			t.Errorf("GET %s: unexpected log %q", test.path, out)
		}
	}
}
