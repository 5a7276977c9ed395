package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crescendo-app/crescendo/internal/model"
	"github.com/crescendo-app/crescendo/internal/session"
)

// LibraryHandler serves the songs collection: list, single add, and the
// bulk full-replace used by edit flows that own the complete end state.
type LibraryHandler struct {
	Session *session.Synchronizer
}

func NewLibraryHandler(s *session.Synchronizer) *LibraryHandler {
	return &LibraryHandler{Session: s}
}

// ListSongs handles GET /v1/songs. The response reflects the mirrored
// snapshot, which may lag a just-issued write until its change note lands.
func (h *LibraryHandler) ListSongs(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Session.Songs()})
}

// AddSong handles POST /v1/songs and appends a single song without
// touching the rest of the collection.
func (h *LibraryHandler) AddSong(c echo.Context) error {
	var song model.Song
	if err := c.Bind(&song); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	song.Title = strings.TrimSpace(song.Title)
	if song.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if song.Quantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must not be negative"})
	}
	if song.ID == "" {
		song.ID = uuid.NewString()
	}
	if song.PerformanceHistory == nil {
		song.PerformanceHistory = []model.Performance{}
	}
	song.RecomputeLastPerformed()

	h.Session.AddSongs(c.Request().Context(), []model.Song{song})
	return c.JSON(http.StatusCreated, song)
}

// ReplaceSongs handles PUT /v1/songs: the full-replace write. Every song
// absent from the submitted list is deleted remotely; everything submitted
// is upserted. Restricted to Director and Librarian by the router.
func (h *LibraryHandler) ReplaceSongs(c echo.Context) error {
	var body struct {
		Songs []model.Song `json:"songs"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	for i := range body.Songs {
		if strings.TrimSpace(body.Songs[i].Title) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every song needs a title"})
		}
		if body.Songs[i].ID == "" {
			body.Songs[i].ID = uuid.NewString()
		}
		if body.Songs[i].PerformanceHistory == nil {
			body.Songs[i].PerformanceHistory = []model.Performance{}
		}
		body.Songs[i].RecomputeLastPerformed()
	}

	h.Session.SetSongs(c.Request().Context(), body.Songs)
	return c.JSON(http.StatusOK, echo.Map{"count": len(body.Songs)})
}
