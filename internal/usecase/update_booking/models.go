package update_booking

import "time"

// Request модель запроса на обновление бронирования
// Все поля, кроме идентификаторов, опциональны: nil означает "не менять"
type Request struct {
	BookingID int64 // ID бронирования

	GroupSize          *int     // Новый размер группы (1..50)
	Status             *string  // Новый статус (по таблице переходов)
	TotalAmount        *float64 // Сумма к оплате
	PaymentStatus      *string  // Статус оплаты
	PaymentMethod      *string  // Способ оплаты
	Notes              *string  // Заметки
	SpecialRequests    *string  // Особые пожелания
	CancellationReason *string  // Причина отмены (обязательна при status=cancelled)

	UserID int64 // ID пользователя, выполняющего обновление
}

// Response модель ответа с обновлённым бронированием
type Response struct {
	ID        int64
	SlotID    int64
	VisitorID int64
	GroupSize int
	Status    string

	TotalAmount   float64
	PaymentStatus string
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
