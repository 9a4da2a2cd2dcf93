package notifyservice

// EventType тип события бронирования для диспетчера уведомлений
type EventType string

const (
	EventBookingCreated   EventType = "booking_created"
	EventBookingConfirmed EventType = "booking_confirmed"
	EventBookingCancelled EventType = "booking_cancelled"
)

// notifyRequest тело запроса к NotificationService
// Сервис уведомлений сам формирует текст письма/SMS по типу события;
// отсюда уходит только сигнал о том, что событие произошло
type notifyRequest struct {
	BookingID int64  `json:"bookingId"`
	EventType string `json:"eventType"`
}
