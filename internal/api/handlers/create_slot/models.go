package create_slot

import (
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
	"github.com/m04kA/VMS-VisitService/pkg/types"
)

// CreateSlotRequest HTTP request model
type CreateSlotRequest struct {
	Date        string  `json:"date"`      // "2026-09-15"
	StartTime   string  `json:"startTime"` // "10:00"
	EndTime     string  `json:"endTime"`   // "11:00"
	Capacity    int     `json:"capacity"`
	Description *string `json:"description,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
// (с парсингом даты и времени)
func (r *CreateSlotRequest) ToServiceRequest(userID int64) (*models.CreateSlotRequest, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	return &models.CreateSlotRequest{
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		Capacity:    r.Capacity,
		Description: r.Description,
		CreatedBy:   userID,
	}, nil
}
