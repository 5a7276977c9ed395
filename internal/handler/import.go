package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crescendo-app/crescendo/internal/importer"
	"github.com/crescendo-app/crescendo/internal/queue"
	"github.com/crescendo-app/crescendo/internal/session"
	queue_publisher "github.com/crescendo-app/crescendo/internal/service"
)

// ImportHandler accepts raw CSV uploads for the library and the
// performance-history importers. Both endpoints are Director-only. After a
// run completes an ImportCompletedEvent is published to the broker; publish
// failures never fail the import, the data is already written.
type ImportHandler struct {
	Session *session.Synchronizer
}

func NewImportHandler(s *session.Synchronizer) *ImportHandler {
	return &ImportHandler{Session: s}
}

// ImportLibrary handles POST /v1/import/library. The request body is the
// CSV file itself.
func (h *ImportHandler) ImportLibrary(c echo.Context) error {
	report, err := importer.ImportLibrary(c.Request().Context(), h.Session, c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not parse the CSV file"})
	}

	h.publish(c, "library", report.RowsTotal, 0, report.SongsAdded)
	return c.JSON(http.StatusOK, report)
}

// ImportHistory handles POST /v1/import/history. The library must already
// contain songs: history rows match on title, so an empty library would
// silently match nothing.
func (h *ImportHandler) ImportHistory(c echo.Context) error {
	if len(h.Session.Songs()) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "import your music library before importing performance history"})
	}

	report, err := importer.ImportHistory(c.Request().Context(), h.Session, c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not parse the CSV file"})
	}

	h.publish(c, "history", report.RowsTotal, report.RowsMatched, 0)
	return c.JSON(http.StatusOK, report)
}

func (h *ImportHandler) publish(c echo.Context, kind string, total, matched, added int) {
	userID, _ := getUserID(c)
	var email string
	for _, u := range h.Session.Users() {
		if u.ID == userID {
			email = u.Email
			break
		}
	}
	_ = queue_publisher.PublishImportCompleted(c.Request().Context(), queue.ImportCompletedEvent{
		Kind:        kind,
		UserID:      userID,
		UserEmail:   email,
		RowsTotal:   total,
		RowsMatched: matched,
		SongsAdded:  added,
		CompletedAt: time.Now().UTC().Format(timeLayout),
	})
}
