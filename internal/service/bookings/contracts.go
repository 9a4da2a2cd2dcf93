package bookings

import (
	"context"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/integrations/notifyservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter, page domain.Pagination) ([]*domain.Booking, int64, error)
	Confirm(ctx context.Context, id int64, confirmedAt time.Time) error
	Cancel(ctx context.Context, id int64, reason string, cancelledAt time.Time) error
	Delete(ctx context.Context, id int64) error
	GetStats(ctx context.Context, windowDays int, now time.Time) (*domain.BookingStats, error)
}

// CapacityReconciler пересчитывает кэш booked_count слота по активным
// бронированиям; вызывается внутри транзакции каждой мутации бронирований
type CapacityReconciler interface {
	ReconcileBookedCount(ctx context.Context, slotID int64) (int, error)
}

// Notifier интерфейс диспетчера уведомлений
// Контент письма/SMS формирует внешний сервис - отсюда уходит только сигнал
type Notifier interface {
	NotifyBookingEvent(ctx context.Context, bookingID int64, eventType notifyservice.EventType) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
