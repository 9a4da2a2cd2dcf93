package get_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings"
)

const (
	msgInvalidQuery = "некорректные параметры фильтрации"
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

// Handle GET /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req, err := ParseListRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /bookings - Invalid query params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /bookings - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /bookings - Failed to list bookings: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings - Listed %d bookings (total=%d)", len(result.Bookings), result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
