package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-booking/internal/utils"
)

const testSecret = "unit-test-secret"

func runProtected(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, mw(ok)(c))
	return rec
}

func TestJWTAuthAcceptsIssuedToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "CUSTOMER", 5)
	require.NoError(t, err)

	rec := runProtected(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsMissingAndBogusTokens(t *testing.T) {
	tests := []struct {
		description string
		header      string
	}{
		{"no header", ""},
		{"not a bearer", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, test := range tests {
		rec := runProtected(t, JWTAuth(testSecret), test.header)
		assert.Equalf(t, http.StatusUnauthorized, rec.Code, test.description)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, "CUSTOMER", 5)
	require.NoError(t, err)

	rec := runProtected(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	adminOnly := RequireRole("ADMIN")

	tests := []struct {
		description  string
		role         interface{}
		expectedCode int
	}{
		{"admin passes", "ADMIN", http.StatusOK},
		{"customer is refused", "CUSTOMER", http.StatusForbidden},
		{"missing role is refused", nil, http.StatusForbidden},
		{"non-string role is refused", 42, http.StatusForbidden},
	}
	for _, test := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if test.role != nil {
			c.Set("role", test.role)
		}
		require.NoError(t, adminOnly(ok)(c))
		assert.Equalf(t, test.expectedCode, rec.Code, test.description)
	}
}
