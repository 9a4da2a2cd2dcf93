package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	SlotID          int64    // ID слота посещения
	VisitorID       int64    // ID посетителя
	GroupSize       int      // Размер группы (1..50)
	TotalAmount     *float64 // Сумма к оплате (опционально, по умолчанию 0)
	PaymentMethod   *string  // Способ оплаты (опционально)
	PaymentStatus   *string  // Статус оплаты (опционально, по умолчанию pending)
	Notes           *string  // Заметки (опционально)
	SpecialRequests *string  // Особые пожелания (опционально)
	CreatedBy       int64    // ID пользователя, создавшего бронирование
}

// Response модель ответа с созданным бронированием
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

	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
