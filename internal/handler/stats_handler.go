package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskhub/internal/errors"
	"taskhub/internal/service"
)

// StatsHandler handles task aggregate endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// CompletionSummary godoc
// @Summary Completion summary of the authenticated user's tasks
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.CompletionSummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/task-stats [get]
func (h *StatsHandler) CompletionSummary(c echo.Context) error {
	ident, err := boundIdentity(c)
	if err != nil {
		return err
	}

	summary, err := h.statsService.CompletionSummary(c.Request().Context(), ident)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, summary)
}

// PendingAggregate godoc
// @Summary Time aggregates over the authenticated user's pending tasks
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PendingAggregate
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/pending-tasks [get]
func (h *StatsHandler) PendingAggregate(c echo.Context) error {
	ident, err := boundIdentity(c)
	if err != nil {
		return err
	}

	aggregate, err := h.statsService.PendingAggregate(c.Request().Context(), ident)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, aggregate)
}

// PriorityBreakdown godoc
// @Summary Per-priority breakdown of the authenticated user's tasks
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PriorityBreakdown
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/tasks-by-priority [get]
func (h *StatsHandler) PriorityBreakdown(c echo.Context) error {
	ident, err := boundIdentity(c)
	if err != nil {
		return err
	}

	breakdown, err := h.statsService.PriorityBreakdown(c.Request().Context(), ident)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, breakdown)
}
