package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crescendo-app/crescendo/internal/model"
	"github.com/crescendo-app/crescendo/internal/session"
)

// ConcertHandler serves the concerts collection. Single-concert edits go
// through the synchronizer's designated edit path, which is where the
// isLocked rule is enforced; the bulk replace endpoint bypasses it on
// purpose for import/restore flows.
type ConcertHandler struct {
	Session *session.Synchronizer
}

func NewConcertHandler(s *session.Synchronizer) *ConcertHandler {
	return &ConcertHandler{Session: s}
}

// ListConcerts handles GET /v1/concerts.
func (h *ConcertHandler) ListConcerts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Session.Concerts()})
}

// ReplaceConcerts handles POST /v1/concerts: full-replace-by-diff of the
// whole collection. Restricted to Director and Librarian by the router.
func (h *ConcertHandler) ReplaceConcerts(c echo.Context) error {
	var body struct {
		Concerts []model.Concert `json:"concerts"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	for i := range body.Concerts {
		if strings.TrimSpace(body.Concerts[i].Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every concert needs a name"})
		}
		if body.Concerts[i].ID == "" {
			body.Concerts[i].ID = uuid.NewString()
		}
		if body.Concerts[i].Pieces == nil {
			body.Concerts[i].Pieces = []model.Song{}
		}
	}

	h.Session.SetConcerts(c.Request().Context(), body.Concerts)
	return c.JSON(http.StatusOK, echo.Map{"count": len(body.Concerts)})
}

type concertUpdateReq struct {
	Name     *string       `json:"name"`
	Date     *string       `json:"date"`
	Pieces   *[]model.Song `json:"pieces"`
	IsLocked *bool         `json:"isLocked"`
}

// UpdateConcert handles PATCH /v1/concerts/:id, the designated edit path.
// Editing the name, date or pieces of a locked or past concert is rejected
// with 409; toggling the lock itself is always allowed.
func (h *ConcertHandler) UpdateConcert(c echo.Context) error {
	id := c.Param("id")
	var req concertUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	update := session.ConcertUpdate{Pieces: req.Pieces, IsLocked: req.IsLocked}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		update.Name = &name
	}
	if req.Date != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format"})
		}
		update.Date = &parsed
	}

	concert, err := h.Session.UpdateConcert(c.Request().Context(), id, update)
	if err != nil {
		if errors.Is(err, session.ErrConcertNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		if errors.Is(err, session.ErrConcertLocked) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "editing is disabled for past or locked concerts"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, concert)
}
