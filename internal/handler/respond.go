package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// envelope is the uniform response shape. Every endpoint, including error
// paths, answers with it so clients can branch on a single success flag.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// okList includes the element count next to the collection.
func okList[T any](c echo.Context, items []T) error {
	n := len(items)
	return c.JSON(http.StatusOK, envelope{Success: true, Data: items, Count: &n})
}

func okMsg(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: msg})
}

func created(c echo.Context, data any, msg string) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: data, Message: msg})
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, envelope{Success: false, Error: msg})
}

// dbCtx bounds a repository call so a slow database cannot hold the
// request open indefinitely.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
