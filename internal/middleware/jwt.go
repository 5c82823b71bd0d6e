package middleware // reusable HTTP middleware shared by all route groups

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
)

// Authenticate returns an Echo middleware that validates a Bearer access
// token and resolves it to a live user record. The token's subject claim
// is the user's email; the user is loaded on every request so role
// changes and deactivation take effect immediately. On success the
// middleware stores the *model.User under "user" plus "user_id" and
// "role" strings for downstream middleware.
func Authenticate(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			email, _ := claims["sub"].(string)
			if email == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			u, err := users.GetByEmail(c.Request().Context(), email)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive user"})
			}

			c.Set("user", u)
			c.Set("user_id", strconv.FormatUint(u.ID, 10))
			c.Set("role", u.Role)
			return next(c)
		}
	}
}
