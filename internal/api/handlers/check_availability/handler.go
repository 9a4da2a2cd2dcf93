package check_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/service/slots"
)

const (
	msgInvalidSlotID    = "некорректный идентификатор слота"
	msgInvalidGroupSize = "некорректный параметр groupSize"
	msgInvalidExclude   = "некорректный параметр excludeBookingId"
	msgNotFound         = "слот посещения не найден"
	msgInvalidInput     = "некорректные параметры запроса"
)

type Handler struct {
	service SlotsService
	logger  Logger
}

func NewHandler(service SlotsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots/{slotId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(mux.Vars(r)["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /slots/{slotId}/availability - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	query := r.URL.Query()

	// groupSize по умолчанию 1 - проверка "есть ли хоть одно место"
	groupSize := 1
	if raw := query.Get("groupSize"); raw != "" {
		if groupSize, err = strconv.Atoi(raw); err != nil {
			h.logger.Warn("GET /slots/{slotId}/availability - Invalid groupSize: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidGroupSize)
			return
		}
	}

	var excludeBookingID *int64
	if raw := query.Get("excludeBookingId"); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warn("GET /slots/{slotId}/availability - Invalid excludeBookingId: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidExclude)
			return
		}
		excludeBookingID = &value
	}

	result, err := h.service.CheckAvailability(r.Context(), slotID, groupSize, excludeBookingID)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("GET /slots/{slotId}/availability - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("GET /slots/{slotId}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /slots/{slotId}/availability - Failed to check availability: slot_id=%d, error=%v",
				slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots/{slotId}/availability - slot_id=%d, group_size=%d, available=%v",
		slotID, groupSize, result.IsAvailable)
	handlers.RespondJSON(w, http.StatusOK, result)
}
