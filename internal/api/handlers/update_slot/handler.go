package update_slot

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
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidSlotID       = "некорректный идентификатор слота"
	msgInvalidDateTime     = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID       = "отсутствует идентификатор пользователя"
	msgNotFound            = "слот посещения не найден"
	msgSlotConflict        = "на эту дату уже существует пересекающийся слот"
	msgCapacityBelowBooked = "нельзя уменьшить вместимость ниже числа забронированных мест"
	msgInvalidInput        = "некорректные данные слота"
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

// Handle PATCH /api/v1/slots/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /slots/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /slots/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(userID)
	if err != nil {
		h.logger.Warn("PATCH /slots/{id} - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.service.Update(r.Context(), slotID, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("PATCH /slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slots.ErrSlotConflict):
			h.logger.Warn("PATCH /slots/{id} - Overlapping slot: slot_id=%d", slotID)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, slots.ErrCapacityBelowBooked):
			h.logger.Warn("PATCH /slots/{id} - Capacity below booked: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgCapacityBelowBooked)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("PATCH /slots/{id} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /slots/{id} - Failed to update slot: slot_id=%d, user_id=%d, error=%v",
				slotID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /slots/{id} - Slot updated successfully: slot_id=%d, user_id=%d", slotID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
