package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// RequireAuth verifies Firebase session cookies (or a bearer ID token) for
// the protected API group and stores the cashier identity in context.
func RequireAuth(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "auth not configured")
			}

			token := ""
			if cookie, err := c.Cookie("session"); err == nil && cookie.Value != "" {
				decoded, err := authClient.VerifySessionCookie(c.Request().Context(), cookie.Value)
				if err == nil {
					setIdentity(c, decoded.UID, decoded.Claims)
					return next(c)
				}
			}

			if header := c.Request().Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}

			decoded, err := authClient.VerifyIDToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
			}
			setIdentity(c, decoded.UID, decoded.Claims)
			return next(c)
		}
	}
}

func setIdentity(c echo.Context, uid string, claims map[string]interface{}) {
	c.Set("userUID", uid)
	if email, ok := claims["email"].(string); ok {
		c.Set("userEmail", email)
	}
	if name, ok := claims["name"].(string); ok {
		c.Set("userName", name)
	}
}
