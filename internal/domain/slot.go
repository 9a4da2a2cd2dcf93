package domain

import (
	"time"

	"github.com/m04kA/VMS-VisitService/pkg/types"
)

// SlotStatus represents the status of a visit slot
type SlotStatus string

const (
	SlotStatusAvailable   SlotStatus = "available"
	SlotStatusBooked      SlotStatus = "booked"
	SlotStatusCancelled   SlotStatus = "cancelled"
	SlotStatusMaintenance SlotStatus = "maintenance"
	SlotStatusExpired     SlotStatus = "expired"
)

// VisitSlot represents a bookable visit time window with finite capacity
type VisitSlot struct {
	ID              int64
	Date            time.Time // Календарная дата слота (без времени)
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Capacity        int
	// BookedCount кэш суммы group_size активных бронирований слота
	// Канонический источник - строки bookings; пересчитывается в той же
	// транзакции, что и любая мутация бронирований
	BookedCount int
	Status      SlotStatus
	Description *string
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsBookable returns true if the slot accepts new bookings
func (s *VisitSlot) IsBookable() bool {
	return s.Status == SlotStatusAvailable
}

// IsFull returns true if the cached counter shows no free capacity
func (s *VisitSlot) IsFull() bool {
	return s.BookedCount >= s.Capacity
}

// IsTerminal returns true if the slot is in a terminal state
func (s *VisitSlot) IsTerminal() bool {
	return s.Status == SlotStatusCancelled || s.Status == SlotStatusExpired
}

// Overlaps проверяет пересечение интервалов [StartTime, EndTime) двух слотов
// Граничные случаи (конец одного == начало другого) пересечением не считаются
func (s *VisitSlot) Overlaps(other *VisitSlot) bool {
	if !isSameDay(s.Date, other.Date) {
		return false
	}
	return s.StartTime.IsBefore(other.EndTime) && other.StartTime.IsBefore(s.EndTime)
}

// SlotAvailability результат расчёта доступной вместимости слота
// Booked считается по живым строкам бронирований, не по кэшу
type SlotAvailability struct {
	SlotID    int64
	Capacity  int
	Booked    int
	Available int
}

// SlotsFilter фильтр для выборки слотов
type SlotsFilter struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    *SlotStatus
	CreatedBy *int64
	// OnlyBookable оставляет только слоты со свободной вместимостью
	OnlyBookable bool
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
