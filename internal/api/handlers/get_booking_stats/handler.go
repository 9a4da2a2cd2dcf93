package get_booking_stats

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

const (
	msgInvalidWindow = "некорректный параметр windowDays"
)

type Handler struct {
	service BookingsService
	logger  Logger
}

func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/stats
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.StatsRequest{}

	if raw := r.URL.Query().Get("windowDays"); raw != "" {
		windowDays, err := strconv.Atoi(raw)
		if err != nil || windowDays <= 0 {
			h.logger.Warn("GET /bookings/stats - Invalid windowDays: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidWindow)
			return
		}
		req.WindowDays = windowDays
	}

	result, err := h.service.GetStats(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /bookings/stats - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		default:
			h.logger.Error("GET /bookings/stats - Failed to get stats: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/stats - Stats retrieved: total=%d", result.TotalBookings)
	handlers.RespondJSON(w, http.StatusOK, result)
}
