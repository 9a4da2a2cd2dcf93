package update_slot

import (
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
	"github.com/m04kA/VMS-VisitService/pkg/types"
)

// UpdateSlotRequest HTTP request model
// nil-поля не изменяются
type UpdateSlotRequest struct {
	Date        *string `json:"date,omitempty"`      // "2026-09-15"
	StartTime   *string `json:"startTime,omitempty"` // "10:00"
	EndTime     *string `json:"endTime,omitempty"`   // "11:00"
	Capacity    *int    `json:"capacity,omitempty"`
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
// (с парсингом даты и времени)
func (r *UpdateSlotRequest) ToServiceRequest(userID int64) (*models.UpdateSlotRequest, error) {
	req := &models.UpdateSlotRequest{
		UserID:      userID,
		Capacity:    r.Capacity,
		Status:      r.Status,
		Description: r.Description,
	}

	if r.Date != nil {
		date, err := time.Parse(domain.DateFormat, *r.Date)
		if err != nil {
			return nil, err
		}
		req.Date = &date
	}

	if r.StartTime != nil {
		startTime, err := types.NewTimeStringFromString(*r.StartTime)
		if err != nil {
			return nil, err
		}
		req.StartTime = &startTime
	}

	if r.EndTime != nil {
		endTime, err := types.NewTimeStringFromString(*r.EndTime)
		if err != nil {
			return nil, err
		}
		req.EndTime = &endTime
	}

	return req, nil
}
