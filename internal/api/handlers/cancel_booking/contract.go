package cancel_booking

import (
	"context"

	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

type BookingsService interface {
	Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
