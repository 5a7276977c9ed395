package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/crescendo-app/crescendo/internal/copyright"
)

// CopyrightHandler fronts the generative copyright lookup. Service may be
// nil when no API key is configured; the endpoint then reports the feature
// as unavailable instead of failing at startup.
type CopyrightHandler struct {
	Service *copyright.Service
}

func NewCopyrightHandler(s *copyright.Service) *CopyrightHandler {
	return &CopyrightHandler{Service: s}
}

// Lookup handles POST /v1/copyright/lookup. The call is made once, with no
// retry; upstream failures surface to the client as a 502.
func (h *CopyrightHandler) Lookup(c echo.Context) error {
	if h.Service == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "copyright lookup is not configured"})
	}
	var in copyright.LookupInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(in.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	result, err := h.Service.Lookup(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "copyright lookup failed"})
	}
	return c.JSON(http.StatusOK, result)
}
