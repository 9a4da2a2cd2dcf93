package domain

import "time"

// BookingStatus represents the status of a visit booking
type BookingStatus string

const (
	StatusTentative BookingStatus = "tentative"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentPartial  PaymentStatus = "partial"
)

// Booking represents a visitor group's claim against a visit slot's capacity
type Booking struct {
	ID        int64
	SlotID    int64
	VisitorID int64
	GroupSize int
	Status    BookingStatus

	TotalAmount   float64
	PaymentStatus PaymentStatus
	PaymentMethod *string

	Notes           *string
	SpecialRequests *string

	CancellationReason *string
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time

	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking currently counts against slot capacity
func (b *Booking) IsActive() bool {
	return b.Status == StatusTentative || b.Status == StatusConfirmed
}

// CanBeConfirmed returns true if the booking can transition to confirmed
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == StatusTentative
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusTentative || b.Status == StatusConfirmed
}

// CanBeUpdated returns true if the booking fields can still be edited
func (b *Booking) CanBeUpdated() bool {
	return b.Status == StatusTentative || b.Status == StatusConfirmed
}

// IsTerminal returns true if the booking reached a terminal state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted || b.Status == StatusNoShow
}

// CanTransitionTo проверяет допустимость перехода статуса по таблице переходов
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	allowed, ok := bookingTransitions[b.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// bookingTransitions таблица допустимых переходов статуса бронирования
// Терминальные статусы (cancelled, completed, no_show) переходов не имеют
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusTentative: {StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
	StatusCancelled: {},
	StatusCompleted: {},
	StatusNoShow:    {},
}

// BookingsFilter фильтр для выборки бронирований
// Диапазон дат применяется к дате слота, которому принадлежит бронирование
type BookingsFilter struct {
	SlotID        *int64
	VisitorID     *int64
	Status        *BookingStatus
	PaymentStatus *PaymentStatus
	PaymentMethod *string
	CreatedBy     *int64
	DateFrom      *time.Time // Начало периода по дате слота (опционально)
	DateTo        *time.Time // Конец периода по дате слота (опционально)
	GroupSizeMin  *int
	GroupSizeMax  *int
	AmountMin     *float64
	AmountMax     *float64
}

// Pagination параметры постраничной выборки
type Pagination struct {
	Page  int
	Limit int
}

// Normalize приводит параметры пагинации к допустимым значениям
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset возвращает смещение для SQL запроса
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// BookingStats агрегированная статистика по бронированиям
type BookingStats struct {
	TotalBookings     int64
	ByStatus          map[BookingStatus]int64
	ByPaymentStatus   map[PaymentStatus]int64
	TotalRevenue      float64 // Сумма total_amount по оплаченным бронированиям
	AverageGroupSize  float64
	Daily             []DailyBookingStats
	TopPaymentMethods []PaymentMethodCount
}

// DailyBookingStats статистика бронирований за один день
type DailyBookingStats struct {
	Date     time.Time
	Bookings int64
	Revenue  float64
}

// PaymentMethodCount количество бронирований по способу оплаты
type PaymentMethodCount struct {
	Method string
	Count  int64
}
