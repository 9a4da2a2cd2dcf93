package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/api/middleware"
	createBooking "github.com/m04kA/VMS-VisitService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует идентификатор пользователя"
	msgSlotNotFound       = "слот посещения не найден"
	msgVisitorNotFound    = "посетитель не найден"
	msgSlotNotBookable    = "слот не принимает бронирования"
	msgCapacityExceeded   = "в слоте недостаточно свободных мест для группы"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings - Slot not found: slot_id=%d", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrVisitorNotFound):
			h.logger.Warn("POST /bookings - Visitor not found: visitor_id=%d", req.VisitorID)
			handlers.RespondNotFound(w, msgVisitorNotFound)

		case errors.Is(err, createBooking.ErrSlotNotBookable):
			h.logger.Warn("POST /bookings - Slot not bookable: slot_id=%d", req.SlotID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotBookable)

		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings - Capacity exceeded: slot_id=%d, group_size=%d", req.SlotID, req.GroupSize)
			handlers.RespondError(w, http.StatusConflict, msgCapacityExceeded)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: slot_id=%d, user_id=%d, error=%v",
				req.SlotID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, slot_id=%d, user_id=%d",
		result.ID, req.SlotID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
