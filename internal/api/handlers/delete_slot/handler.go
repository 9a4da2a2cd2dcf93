package delete_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/api/middleware"
	"github.com/m04kA/VMS-VisitService/internal/service/slots"
)

const (
	msgInvalidSlotID    = "некорректный идентификатор слота"
	msgMissingUserID    = "отсутствует идентификатор пользователя"
	msgNotFound         = "слот посещения не найден"
	msgHasActiveBooking = "нельзя удалить слот с активными бронированиями"
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

// Handle DELETE /api/v1/slots/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /slots/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Delete(r.Context(), slotID, userID); err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("DELETE /slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slots.ErrSlotHasActiveBookings):
			h.logger.Warn("DELETE /slots/{id} - Slot has active bookings: slot_id=%d", slotID)
			handlers.RespondError(w, http.StatusConflict, msgHasActiveBooking)

		default:
			h.logger.Error("DELETE /slots/{id} - Failed to delete slot: slot_id=%d, user_id=%d, error=%v",
				slotID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /slots/{id} - Slot deleted successfully: slot_id=%d, user_id=%d", slotID, userID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
