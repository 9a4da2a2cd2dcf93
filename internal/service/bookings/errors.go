package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrReasonRequired возвращается при отмене без причины
	ErrReasonRequired = errors.New("bookings: cancellation reason is required")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	// (например, подтверждение уже отменённого бронирования)
	ErrInvalidTransition = errors.New("bookings: invalid status transition")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
