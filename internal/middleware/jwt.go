package middleware // reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer token and
// injects the token's id and email claims into the request context. The
// provided secret must match the one used when issuing tokens. Wrap
// protected routes with this so handlers can read the authenticated user
// via `c.Get("user_id")` and `c.Get("email")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"error":   "missing bearer token",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with our secret and make sure the signing method is the
			// HMAC family we issued; anything else is rejected outright.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"error":   "invalid token",
				})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"error":   "invalid claims",
				})
			}

			// Type assertions are left to downstream consumers.
			c.Set("user_id", claims["id"])
			c.Set("email", claims["email"])
			return next(c)
		}
	}
}
