package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onduty/roster/internal/api/middleware"
	"github.com/onduty/roster/internal/core/domain"
)

// ctxSession extracts the session injected by the Auth middleware. A missing
// session means the route was mounted without Auth; reject with 401.
func ctxSession(c echo.Context) (domain.Session, error) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return session, nil
}

// bindAndValidate decodes the JSON body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
	}
	return nil
}
