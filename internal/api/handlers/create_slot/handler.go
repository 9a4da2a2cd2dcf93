package create_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/api/middleware"
	"github.com/m04kA/VMS-VisitService/internal/service/slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует идентификатор пользователя"
	msgSlotConflict       = "на эту дату уже существует пересекающийся слот"
	msgInvalidInput       = "некорректные данные слота"
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

// Handle POST /api/v1/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := req.ToServiceRequest(userID)
	if err != nil {
		h.logger.Warn("POST /slots - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.service.Create(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotConflict):
			h.logger.Warn("POST /slots - Overlapping slot: date=%s, start=%s", req.Date, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /slots - Failed to create slot: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots - Slot created successfully: slot_id=%d, user_id=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
