package expire_slots

import (
	"context"

	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
)

type SlotsService interface {
	ExpirePastUnbookedSlots(ctx context.Context, req *models.ExpireSlotsRequest) (*models.ExpireSlotsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
