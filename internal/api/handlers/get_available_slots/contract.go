package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
)

type SlotsService interface {
	GetPublicAvailableSlots(ctx context.Context, dateFrom, dateTo *time.Time) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
