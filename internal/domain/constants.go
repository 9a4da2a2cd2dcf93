package domain

// Business validation constants
const (
	MinGroupSize = 1
	MaxGroupSize = 50

	MinSlotCapacity = 1
	MaxSlotCapacity = 1000

	MinSlotDurationMinutes = 15
	MaxSlotDurationMinutes = 480 // 8 hours

	MaxNotesLength              = 500
	MaxSpecialRequestsLength    = 500
	MaxDescriptionLength        = 500
	MaxCancellationReasonLength = 500
)

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// DefaultStatsWindowDays окно статистики по умолчанию (trailing window)
const DefaultStatsWindowDays = 30

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveBookingStatuses статусы, удерживающие вместимость слота
// Используются при расчёте доступности и пересчёте booked_count
var ActiveBookingStatuses = []BookingStatus{
	StatusTentative,
	StatusConfirmed,
}

// InactiveBookingStatuses статусы, освободившие вместимость слота
// completed и no_show вместимость не удерживают: визит состоялся (или нет),
// слот в прошлом и учёт мест для него больше не имеет значения
var InactiveBookingStatuses = []BookingStatus{
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}
