package middleware

// identity.go holds helpers shared across middleware files. The JWT
// "sub" claim round-trips through JSON, so it may surface as a string
// or a float64 depending on how it was issued.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID extracts the authenticated user's identifier from the
// context for rate-limit keying. It returns "anon" for unauthenticated
// requests.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return "anon"
}
