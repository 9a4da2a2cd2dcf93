package update_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("update_booking: booking not found")

	// ErrSlotNotFound возвращается, когда слот бронирования не найден
	ErrSlotNotFound = errors.New("update_booking: slot not found")

	// ErrBookingNotEditable возвращается, когда бронирование в терминальном
	// статусе и редактирование полей невозможно
	ErrBookingNotEditable = errors.New("update_booking: booking can no longer be updated")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("update_booking: invalid status transition")

	// ErrReasonRequired возвращается при отмене без указания причины
	ErrReasonRequired = errors.New("update_booking: cancellation reason is required")

	// ErrCapacityExceeded возвращается, когда новый размер группы не помещается
	// в свободную вместимость слота (без учёта вклада самого бронирования)
	ErrCapacityExceeded = errors.New("update_booking: slot capacity exceeded")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_booking: internal error")
)
