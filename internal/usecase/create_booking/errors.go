package create_booking

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrVisitorNotFound возвращается, когда посетитель не найден
	ErrVisitorNotFound = errors.New("create_booking: visitor not found")

	// ErrSlotNotBookable возвращается, когда слот не принимает бронирования
	// (статус отличен от available)
	ErrSlotNotBookable = errors.New("create_booking: slot is not bookable")

	// ErrCapacityExceeded возвращается, когда группа не помещается
	// в свободную вместимость слота
	// Это ожидаемый бизнес-отказ ("мест нет"), а не ошибка системы
	ErrCapacityExceeded = errors.New("create_booking: slot capacity exceeded")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
