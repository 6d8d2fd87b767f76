package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// SessionKey is the echo context key the Auth middleware stores the
// resolved session under.
const SessionKey = "session"

// ctxSession returns the session injected by the Auth middleware. Its
// absence means the route was mounted without authentication.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess, _ := c.Get(SessionKey).(*domain.Session)
	if sess == nil || sess.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}

// bindAndValidate decodes the request body into req and runs the struct
// validator. Both failures are reported as 400.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
