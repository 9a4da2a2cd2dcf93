package cancel_booking

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
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBookingID   = "некорректный идентификатор бронирования"
	msgMissingUserID      = "отсутствует идентификатор пользователя"
	msgNotFound           = "бронирование не найдено"
	msgReasonRequired     = "для отмены необходимо указать причину"
	msgInvalidTransition  = "бронирование нельзя отменить в текущем статусе"
	msgInvalidInput       = "некорректные данные запроса"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

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

// Handle POST /api/v1/bookings/{id}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Cancel(r.Context(), bookingID, &models.CancelBookingRequest{
		UserID:             userID,
		CancellationReason: req.CancellationReason,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/cancel - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrReasonRequired):
			h.logger.Warn("POST /bookings/{id}/cancel - Cancellation reason missing: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgReasonRequired)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/cancel - Invalid transition: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/cancel - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/{id}/cancel - Failed to cancel booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/cancel - Booking cancelled successfully: booking_id=%d, user_id=%d",
		bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
