package update_booking

import (
	"context"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	SumActiveGroupSize(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.VisitSlot, error)
}

// CapacityReconciler пересчитывает кэш booked_count слота
type CapacityReconciler interface {
	ReconcileBookedCount(ctx context.Context, slotID int64) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
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
