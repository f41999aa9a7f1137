package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAction rejects the request unless the decoded user carries the
// given action code. Absent user or absent action both mean deny; no
// request gets through on a doubt. Mount after SetUserFromJWTToken.
func RequireAction(code string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if !user.HasAction(code) {
				return echo.NewHTTPError(http.StatusForbidden, "missing required action: "+code)
			}
			return next(c)
		}
	}
}
