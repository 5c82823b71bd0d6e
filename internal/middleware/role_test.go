package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	mw := RequireRole("superadmin", "dispatcher")

	cases := []struct {
		role string
		want int
	}{
		{"superadmin", http.StatusOK},
		{"dispatcher", http.StatusOK},
		{"hospital_staff", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if tc.role != "" {
			c.Set("role", tc.role)
		}
		assert.NoError(t, mw(next)(c))
		assert.Equal(t, tc.want, rec.Code, "role %q", tc.role)
	}
}
