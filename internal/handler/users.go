package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/crescendo-app/crescendo/internal/model"
	"github.com/crescendo-app/crescendo/internal/session"
)

// UsersHandler serves the Director-only user administration surface.
type UsersHandler struct {
	Session *session.Synchronizer
}

func NewUsersHandler(s *session.Synchronizer) *UsersHandler {
	return &UsersHandler{Session: s}
}

// List handles GET /v1/users and returns the mirrored users collection
// with password hashes stripped.
func (h *UsersHandler) List(c echo.Context) error {
	users := h.Session.Users()
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Replace handles PUT /v1/users: the admin writes the full desired user
// list (role changes, profile fixes) as an upsert-only batch. Password
// hashes are preserved from the existing records when the submitted entry
// leaves the field empty, so admins never handle credentials.
func (h *UsersHandler) Replace(c echo.Context) error {
	var body struct {
		Users []model.User `json:"users"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	existing := make(map[string]model.User)
	for _, u := range h.Session.Users() {
		existing[u.ID] = u
	}

	for i := range body.Users {
		u := &body.Users[i]
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if u.ID == "" || u.Email == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every user needs an id and email"})
		}
		if !model.ValidRole(u.Role) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role: " + u.Role})
		}
		if u.Password == "" {
			if prev, ok := existing[u.ID]; ok {
				u.Password = prev.Password
			}
		}
	}

	h.Session.SetUsers(c.Request().Context(), body.Users)
	return c.JSON(http.StatusOK, echo.Map{"count": len(body.Users)})
}
