package confirm_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/api/middleware"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID  = "некорректный идентификатор бронирования"
	msgMissingUserID     = "отсутствует идентификатор пользователя"
	msgNotFound          = "бронирование не найдено"
	msgInvalidTransition = "подтвердить можно только предварительное бронирование"
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

// Handle POST /api/v1/bookings/{id}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/confirm - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/confirm - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.Confirm(r.Context(), bookingID, &models.ConfirmBookingRequest{UserID: userID})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/confirm - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/confirm - Invalid transition: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		default:
			h.logger.Error("POST /bookings/{id}/confirm - Failed to confirm booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/confirm - Booking confirmed successfully: booking_id=%d, user_id=%d",
		bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
