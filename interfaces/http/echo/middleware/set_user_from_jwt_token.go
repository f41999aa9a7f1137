package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/tidwall/gjson"
	"golang.org/x/net/context"

	"github.com/octabyte/dietician-client/models"
)

// SetUserFromJWTToken decodes the access token's payload and places the
// embedded user in the request context under JWTUserKey. The signature is
// NOT verified here; the backend remains the authority on every call.
func SetUserFromJWTToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Attempt to get the token from the request header first
			token := c.Request().Header.Get(Authorization)

			// If not present, attempt to get it from the cookie
			if token == "" {
				cookie, err := c.Cookie(Authorization)
				if err != nil {
					if err.Error() != "http: named cookie not present" {
						log.Errorf("Error retrieving authorization cookie: %v", err)
					}
					// Proceed to the next middleware if the cookie is not present or an error occurred
					return next(c)
				}
				token = cookie.Value
			}
			token = strings.TrimPrefix(token, "Bearer ")

			// Split the token
			parts := strings.Split(token, ".")
			if len(parts) != 3 {
				return next(c)
			}

			// Decode the payload (second part of the token)
			payload, err := base64.RawURLEncoding.DecodeString(parts[1])
			if err != nil {
				return next(c)
			}

			userString := gjson.GetBytes(payload, "user").String()
			if userString == "" {
				return next(c)
			}

			var user models.User
			err = json.Unmarshal([]byte(userString), &user)
			if err != nil {
				return next(c)
			}

			newContext := context.WithValue(c.Request().Context(), JWTUserKey, user)
			c.SetRequest(c.Request().WithContext(newContext))
			c.Set(UserKey, &user)
			return next(c)
		}
	}
}

// UserFromContext returns the decoded user set by SetUserFromJWTToken,
// or nil when no token was presented.
func UserFromContext(c echo.Context) *models.User {
	user, _ := c.Get(UserKey).(*models.User)
	return user
}
