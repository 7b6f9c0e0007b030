package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dasanworld/concert-reserve/internal/service"
)

// JobsHandler serves the operational job endpoints. The same sweep the
// background loop runs can be triggered here on demand, which keeps
// seat state recoverable when the loop is down or a release is urgent.
type JobsHandler struct {
	Sweeps *service.SweepService
}

// NewJobsHandler constructs a JobsHandler.
func NewJobsHandler(sweeps *service.SweepService) *JobsHandler {
	if sweeps == nil {
		panic("nil service passed to NewJobsHandler")
	}
	return &JobsHandler{Sweeps: sweeps}
}

// CleanupExpiredHolds handles POST /jobs/cleanup-expired-holds. It
// releases every hold whose expiry has passed and reports which seats
// were freed. Access is gated by the job secret middleware.
func (h *JobsHandler) CleanupExpiredHolds(c echo.Context) error {
	result, err := h.Sweeps.SweepExpiredHolds(c.Request().Context())
	if err != nil {
		return errJSON(c, http.StatusInternalServerError, codeCleanupFailed, "Failed to clean up expired holds.")
	}
	return c.JSON(http.StatusOK, result)
}
