package handler

import (
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities

	"github.com/google/uuid"      // document ids for new users
	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/crescendo-app/crescendo/internal/config"  // app configuration
	"github.com/crescendo-app/crescendo/internal/model"   // user documents
	"github.com/crescendo-app/crescendo/internal/session" // collection synchronizer
	"github.com/crescendo-app/crescendo/internal/utils"   // token issuing and hashing
)

// AuthHandler bundles dependencies for signup, login and profile endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Session *session.Synchronizer
}

func NewAuthHandler(cfg config.Config, s *session.Synchronizer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Session: s}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type updateMeReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type tokenPart struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}
type authResp struct {
	User   model.User `json:"user"`
	Access tokenPart  `json:"access"`
}

// Register creates a user and returns a token immediately. By convention
// the first user ever registered becomes Director; everyone after starts
// as Musician.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if req.Name == "" {
		req.Name = req.Email
	}

	users := h.Session.Users()
	for _, u := range users {
		if u.Email == req.Email {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
	}

	role := model.RoleMusician
	if len(users) == 0 {
		role = model.RoleDirector
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	user := model.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Role:     role,
		Email:    req.Email,
		Password: hash,
	}

	ctx := c.Request().Context()
	h.Session.SetUsers(ctx, append(users, user))
	h.Session.AdoptProfile(ctx, user)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		User:   user.Sanitized(),
		Access: tokenPart{Token: access.Token, Expires: access.Exp.Format(timeLayout)},
	})
}

// Login verifies credentials against the mirrored users collection and
// returns a fresh access token. No session is established on failure.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	var found *model.User
	for _, u := range h.Session.Users() {
		if u.Email == req.Email {
			match := u
			found = &match
			break
		}
	}
	if found == nil || !utils.VerifyPassword(found.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	h.Session.AdoptProfile(c.Request().Context(), *found)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, found.ID, found.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   found.Sanitized(),
		Access: tokenPart{Token: access.Token, Expires: access.Exp.Format(timeLayout)},
	})
}

// Me returns the authenticated user's record from the mirrored users
// collection, falling back to the cached profile when the snapshot has not
// caught up with a fresh signup yet.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	for _, u := range h.Session.Users() {
		if u.ID == userID {
			return c.JSON(http.StatusOK, u.Sanitized())
		}
	}
	if p := h.Session.Profile(); p.ID == userID {
		return c.JSON(http.StatusOK, p.Sanitized())
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
}

// UpdateMe merges partial profile fields into the authenticated user's
// record: optimistic local update plus cache, then a merge-write to the
// store. A failed remote write is not rolled back.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateMeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	update := session.UserUpdate{Name: req.Name}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
		}
		update.Email = &email
	}
	if req.Password != nil {
		if *req.Password == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must not be empty"})
		}
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		update.Password = &hash
	}

	ctx := c.Request().Context()
	// Make the JWT user the current profile before merging, so the merge
	// targets the caller's record rather than a stale cached profile.
	for _, u := range h.Session.Users() {
		if u.ID == userID {
			h.Session.AdoptProfile(ctx, u)
			break
		}
	}
	merged := h.Session.UpdateUser(ctx, update)
	return c.JSON(http.StatusOK, merged.Sanitized())
}
