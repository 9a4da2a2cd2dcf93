package get_slot_bookings

import (
	"context"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

type BookingsService interface {
	GetBySlotID(ctx context.Context, slotID int64, page domain.Pagination) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
