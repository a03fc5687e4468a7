package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pitch-booking/internal/service"
)

// PitchHandler serves the read-only pitch catalog.
type PitchHandler struct {
	Catalog *service.Catalog
}

// NewPitchHandler panics when catalog is nil.
func NewPitchHandler(catalog *service.Catalog) *PitchHandler {
	if catalog == nil {
		panic("nil catalog passed to NewPitchHandler")
	}
	return &PitchHandler{Catalog: catalog}
}

// ListPitches handles GET /v1/pitches.  Pitches are ordered by name.
func (h *PitchHandler) ListPitches(c echo.Context) error {
	pitches, err := h.Catalog.ListPitches(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pitches)
}

// GetPitch handles GET /v1/pitches/:id.
func (h *PitchHandler) GetPitch(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pitch id"})
	}
	pitch, err := h.Catalog.GetPitch(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pitch)
}
