package models

import (
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/pkg/types"
)

// Request модели

// CreateSlotRequest запрос на создание слота
type CreateSlotRequest struct {
	Date        time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Capacity    int
	Description *string
	CreatedBy   int64
}

// UpdateSlotRequest запрос на частичное обновление слота
// nil-поля не изменяются
type UpdateSlotRequest struct {
	UserID int64

	Date        *time.Time
	StartTime   *types.TimeString
	EndTime     *types.TimeString
	Capacity    *int
	Status      *string
	Description *string
}

// ExpireSlotsRequest запрос административного sweep'а истечения слотов
type ExpireSlotsRequest struct {
	// ReferenceDate дата отсчёта; nil - текущее время
	ReferenceDate *time.Time
}

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID              int64   `json:"id"`
	Date            string  `json:"date"`      // "2026-09-15"
	StartTime       string  `json:"startTime"` // "10:00"
	EndTime         string  `json:"endTime"`   // "11:00"
	DurationMinutes int     `json:"durationMinutes"`
	Capacity        int     `json:"capacity"`
	BookedCount     int     `json:"bookedCount"`
	Status          string  `json:"status"`
	Description     *string `json:"description,omitempty"`
	CreatedBy       int64   `json:"createdBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SlotListResponse ответ со списком слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// AvailabilityResponse результат проверки доступности слота
type AvailabilityResponse struct {
	SlotID      int64 `json:"slotId"`
	IsAvailable bool  `json:"isAvailable"`
	Capacity    int   `json:"capacity"`
	Booked      int   `json:"booked"`
	Available   int   `json:"available"`
}

// ExpireSlotsResponse результат sweep'а истечения слотов
type ExpireSlotsResponse struct {
	ExpiredCount int64  `json:"expiredCount"`
	CutoffDate   string `json:"cutoffDate"` // "2026-09-15"
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.VisitSlot) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:              s.ID,
		Date:            s.Date.Format(domain.DateFormat),
		StartTime:       s.StartTime.String(),
		EndTime:         s.EndTime.String(),
		DurationMinutes: s.DurationMinutes,
		Capacity:        s.Capacity,
		BookedCount:     s.BookedCount,
		Status:          string(s.Status),
		Description:     s.Description,
		CreatedBy:       s.CreatedBy,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDomainSlotList конвертирует список domain моделей в DTO
func FromDomainSlotList(slots []*domain.VisitSlot) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]SlotResponse, 0, len(slots)),
	}

	for _, slot := range slots {
		if slotResp := FromDomainSlot(slot); slotResp != nil {
			resp.Slots = append(resp.Slots, *slotResp)
		}
	}

	return resp
}

// ToDomainSlotStatus конвертирует строку в domain.SlotStatus с валидацией
func ToDomainSlotStatus(status string) (domain.SlotStatus, bool) {
	s := domain.SlotStatus(status)

	validStatuses := []domain.SlotStatus{
		domain.SlotStatusAvailable,
		domain.SlotStatusBooked,
		domain.SlotStatusCancelled,
		domain.SlotStatusMaintenance,
		domain.SlotStatusExpired,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, true
		}
	}

	return "", false
}
