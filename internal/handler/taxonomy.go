package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/crescendo-app/crescendo/internal/session"
)

// TaxonomyHandler serves the admin-editable music type/subtype lists.
// Uniqueness is enforced here at write time — case-insensitively for
// types — because the storage layer does not police it.
type TaxonomyHandler struct {
	Session *session.Synchronizer
}

func NewTaxonomyHandler(s *session.Synchronizer) *TaxonomyHandler {
	return &TaxonomyHandler{Session: s}
}

// Get handles GET /v1/taxonomy.
func (h *TaxonomyHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Session.Taxonomy())
}

type taxonomyReq struct {
	Items []string `json:"items"`
}

// SetTypes handles PUT /v1/taxonomy/types (Director only).
func (h *TaxonomyHandler) SetTypes(c echo.Context) error {
	items, ok, err := bindTaxonomyItems(c, true)
	if !ok {
		return err
	}
	h.Session.SetMusicTypes(c.Request().Context(), items)
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SetSubtypes handles PUT /v1/taxonomy/subtypes (Director only).
func (h *TaxonomyHandler) SetSubtypes(c echo.Context) error {
	items, ok, err := bindTaxonomyItems(c, false)
	if !ok {
		return err
	}
	h.Session.SetMusicSubtypes(c.Request().Context(), items)
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// bindTaxonomyItems validates a taxonomy list: entries trimmed, none empty,
// no duplicates. When ok is false the rejection response has already been
// written and the handler should return err as-is.
func bindTaxonomyItems(c echo.Context, foldCase bool) (items []string, ok bool, err error) {
	var req taxonomyReq
	if err := c.Bind(&req); err != nil {
		return nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	seen := make(map[string]bool, len(req.Items))
	items = make([]string, 0, len(req.Items))
	for _, raw := range req.Items {
		item := strings.TrimSpace(raw)
		if item == "" {
			return nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "empty item"})
		}
		key := item
		if foldCase {
			key = strings.ToLower(item)
		}
		if seen[key] {
			return nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate item: " + item})
		}
		seen[key] = true
		items = append(items, item)
	}
	return items, true, nil
}
