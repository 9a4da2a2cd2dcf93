package update_booking

import (
	"context"

	updateBooking "github.com/m04kA/VMS-VisitService/internal/usecase/update_booking"
)

type UpdateBookingUseCase interface {
	Execute(ctx context.Context, req *updateBooking.Request) (*updateBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
