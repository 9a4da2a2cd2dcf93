package domain

import "time"

// Visitor represents a registered visitor referenced by bookings
// Управление профилем посетителя живет снаружи; здесь только то,
// что нужно для проверки существования и денормализации в ответах
type Visitor struct {
	ID       int64
	FullName string
	Email    string
	Phone    *string

	CreatedAt time.Time
}
