package check_availability

import (
	"context"

	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
)

type SlotsService interface {
	CheckAvailability(ctx context.Context, slotID int64, groupSize int, excludeBookingID *int64) (*models.AvailabilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
