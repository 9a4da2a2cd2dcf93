package slots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slots: slot not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("slots: invalid input data")

	// ErrSlotConflict возвращается при пересечении временных окон слотов
	// на одну дату (модель одной площадки - параллельных треков нет)
	ErrSlotConflict = errors.New("slots: overlapping slot exists")

	// ErrCapacityBelowBooked возвращается при попытке уменьшить вместимость
	// ниже суммы активных бронирований
	ErrCapacityBelowBooked = errors.New("slots: capacity below committed bookings")

	// ErrSlotHasActiveBookings возвращается при попытке удалить слот
	// с активными бронированиями
	ErrSlotHasActiveBookings = errors.New("slots: slot has active bookings")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("slots: internal error")
)
