package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/awharton/catwatch/internal/store"
)

// StatusHandler reports entity counts for dashboards and the status command.
type StatusHandler struct {
	store store.Store
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(s store.Store) *StatusHandler {
	return &StatusHandler{store: s}
}

// Status returns current entity totals.
//
// @Summary Entity counts
// @Description Returns current totals per entity kind.
// @Tags status
// @Produce json
// @Success 200 {object} domain.Counts
// @Failure 500 {object} ErrorResponse
// @Router /status [get]
func (h *StatusHandler) Status(c echo.Context) error {
	counts, err := h.store.Counts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "counting entities",
		})
	}
	return c.JSON(http.StatusOK, counts)
}
