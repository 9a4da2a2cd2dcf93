package get_slot_bookings

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/domain"
)

const (
	msgInvalidSlotID     = "некорректный идентификатор слота"
	msgInvalidPagination = "некорректные параметры пагинации"
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

// Handle GET /api/v1/slots/{slotId}/bookings
// Бронирования слота в порядке очереди (по времени создания)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(mux.Vars(r)["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /slots/{slotId}/bookings - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	page := domain.Pagination{}
	query := r.URL.Query()
	if raw := query.Get("page"); raw != "" {
		if page.Page, err = strconv.Atoi(raw); err != nil {
			h.logger.Warn("GET /slots/{slotId}/bookings - Invalid page: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidPagination)
			return
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if page.Limit, err = strconv.Atoi(raw); err != nil {
			h.logger.Warn("GET /slots/{slotId}/bookings - Invalid limit: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidPagination)
			return
		}
	}

	result, err := h.service.GetBySlotID(r.Context(), slotID, page)
	if err != nil {
		h.logger.Error("GET /slots/{slotId}/bookings - Failed to list bookings: slot_id=%d, error=%v",
			slotID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /slots/{slotId}/bookings - Listed %d bookings for slot_id=%d",
		len(result.Bookings), slotID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
