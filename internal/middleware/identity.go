package middleware

import "github.com/labstack/echo/v4"

// userID returns the authenticated caller stored by JWTAuth, or "anon" when
// the request has not been authenticated.
func userID(c echo.Context) string {
    if s, ok := c.Get("user_id").(string); ok && s != "" {
        return s
    }
    return "anon"
}

// UserID exposes the caller identity to handlers.
func UserID(c echo.Context) string {
    return userID(c)
}
