package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// timeLayout is the wire format for timestamps in responses.
const timeLayout = "2006-01-02T15:04:05Z07:00"

var errNoUser = errors.New("no authenticated user in context")

// getUserID extracts the authenticated user's document id placed in the
// context by the JWTAuth middleware.
func getUserID(c echo.Context) (string, error) {
	id, ok := c.Get("user_id").(string)
	if !ok || id == "" {
		return "", errNoUser
	}
	return id, nil
}
