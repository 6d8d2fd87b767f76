package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// result is the success envelope shared by every endpoint. Errors are
// rendered with the same shape by the API error handler.
type result struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, result{Success: true, Data: data})
}

// queryInt reads an integer query parameter, returning def when it is
// missing or malformed.
func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}
