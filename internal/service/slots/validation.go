package slots

import (
	"fmt"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
	"github.com/m04kA/VMS-VisitService/pkg/types"
)

// validateCreateRequest валидирует запрос на создание слота
func validateCreateRequest(req *models.CreateSlotRequest, now time.Time) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if isDateInPast(req.Date, now) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidInput)
	}

	if err := validateTimeWindow(req.StartTime, req.EndTime); err != nil {
		return err
	}

	if err := validateCapacity(req.Capacity); err != nil {
		return err
	}

	if req.Description != nil && len(*req.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, domain.MaxDescriptionLength)
	}

	if req.CreatedBy <= 0 {
		return fmt.Errorf("%w: createdBy must be positive", ErrInvalidInput)
	}

	return nil
}

// validateUpdateRequest валидирует присутствующие поля запроса на обновление
func validateUpdateRequest(req *models.UpdateSlotRequest) error {
	if req.Capacity != nil {
		if err := validateCapacity(*req.Capacity); err != nil {
			return err
		}
	}

	if req.StartTime != nil {
		if err := req.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
		}
	}

	if req.EndTime != nil {
		if err := req.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
		}
	}

	if req.Status != nil {
		if _, ok := models.ToDomainSlotStatus(*req.Status); !ok {
			return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *req.Status)
		}
	}

	if req.Description != nil && len(*req.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, domain.MaxDescriptionLength)
	}

	return nil
}

// applyUpdate накладывает непустые поля запроса на слот и ревалидирует
// итоговое временное окно
func applyUpdate(slot *domain.VisitSlot, req *models.UpdateSlotRequest) error {
	if req.Date != nil {
		slot.Date = *req.Date
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.Capacity != nil {
		slot.Capacity = *req.Capacity
	}
	if req.Status != nil {
		status, ok := models.ToDomainSlotStatus(*req.Status)
		if !ok {
			return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *req.Status)
		}
		slot.Status = status
	}
	if req.Description != nil {
		slot.Description = req.Description
	}

	// Итоговое окно должно оставаться валидным после любой комбинации изменений
	if req.StartTime != nil || req.EndTime != nil {
		if err := validateTimeWindow(slot.StartTime, slot.EndTime); err != nil {
			return err
		}
		duration, err := slot.StartTime.MinutesUntil(slot.EndTime)
		if err != nil {
			return fmt.Errorf("%w: invalid time window: %v", ErrInvalidInput, err)
		}
		slot.DurationMinutes = duration
	}

	return nil
}

// validateTimeWindow проверяет окно слота: формат HH:MM, start < end,
// длительность в допустимых пределах
func validateTimeWindow(start, end types.TimeString) error {
	if start.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if end.IsZero() {
		return fmt.Errorf("%w: endTime is required", ErrInvalidInput)
	}

	if err := start.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	if err := end.Validate(); err != nil {
		return fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}

	if !start.IsBefore(end) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	duration, err := start.MinutesUntil(end)
	if err != nil {
		return fmt.Errorf("%w: invalid time window: %v", ErrInvalidInput, err)
	}

	if duration < domain.MinSlotDurationMinutes || duration > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}

	return nil
}

// validateCapacity проверяет вместимость слота
func validateCapacity(capacity int) error {
	if capacity < domain.MinSlotCapacity || capacity > domain.MaxSlotCapacity {
		return fmt.Errorf("%w: capacity must be between %d and %d",
			ErrInvalidInput, domain.MinSlotCapacity, domain.MaxSlotCapacity)
	}
	return nil
}

// findOverlap ищет слот, пересекающийся с candidate по окну [start, end)
// excludeID исключает сам обновляемый слот из проверки
func findOverlap(candidate *domain.VisitSlot, existing []*domain.VisitSlot, excludeID *int64) *domain.VisitSlot {
	for _, other := range existing {
		if excludeID != nil && other.ID == *excludeID {
			continue
		}
		if candidate.Overlaps(other) {
			return other
		}
	}
	return nil
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
