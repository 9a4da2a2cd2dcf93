package update_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/api/middleware"
	updateBooking "github.com/m04kA/VMS-VisitService/internal/usecase/update_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBookingID   = "некорректный идентификатор бронирования"
	msgMissingUserID      = "отсутствует идентификатор пользователя"
	msgNotFound           = "бронирование не найдено"
	msgSlotNotFound       = "слот посещения не найден"
	msgNotEditable        = "бронирование больше нельзя изменить"
	msgInvalidTransition  = "недопустимый переход статуса бронирования"
	msgReasonRequired     = "для отмены необходимо указать причину"
	msgCapacityExceeded   = "в слоте недостаточно свободных мест для группы"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase UpdateBookingUseCase
	logger  Logger
}

func NewHandler(useCase UpdateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID, userID))
	if err != nil {
		switch {
		case errors.Is(err, updateBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id} - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, updateBooking.ErrSlotNotFound):
			h.logger.Error("PATCH /bookings/{id} - Slot not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, updateBooking.ErrBookingNotEditable):
			h.logger.Warn("PATCH /bookings/{id} - Booking not editable: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgNotEditable)

		case errors.Is(err, updateBooking.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id} - Invalid transition: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, updateBooking.ErrReasonRequired):
			h.logger.Warn("PATCH /bookings/{id} - Cancellation reason required: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgReasonRequired)

		case errors.Is(err, updateBooking.ErrCapacityExceeded):
			h.logger.Warn("PATCH /bookings/{id} - Capacity exceeded: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgCapacityExceeded)

		case errors.Is(err, updateBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /bookings/{id} - Failed to update booking: booking_id=%d, user_id=%d, error=%v",
				bookingID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id} - Booking updated successfully: booking_id=%d, user_id=%d",
		bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
