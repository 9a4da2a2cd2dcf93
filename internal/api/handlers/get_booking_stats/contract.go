package get_booking_stats

import (
	"context"

	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

type BookingsService interface {
	GetStats(ctx context.Context, req *models.StatsRequest) (*models.StatsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
