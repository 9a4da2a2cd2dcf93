package create_booking

import (
	"context"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/integrations/notifyservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	SumActiveGroupSize(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.VisitSlot, error)
}

// VisitorRepository интерфейс репозитория посетителей
type VisitorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Visitor, error)
}

// CapacityReconciler пересчитывает кэш booked_count слота
type CapacityReconciler interface {
	ReconcileBookedCount(ctx context.Context, slotID int64) (int, error)
}

// Notifier интерфейс диспетчера уведомлений
type Notifier interface {
	NotifyBookingEvent(ctx context.Context, bookingID int64, eventType notifyservice.EventType) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
