package slots

import (
	"context"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.VisitSlot) (*domain.VisitSlot, error)
	GetByID(ctx context.Context, id int64) (*domain.VisitSlot, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.VisitSlot, error)
	ListByDate(ctx context.Context, date time.Time) ([]*domain.VisitSlot, error)
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.VisitSlot, error)
	Update(ctx context.Context, slot *domain.VisitSlot) error
	UpdateBookedCount(ctx context.Context, id int64, bookedCount int) error
	Delete(ctx context.Context, id int64) error
	ExpirePastUnbooked(ctx context.Context, cutoff time.Time) (int64, error)
}

// BookingRepository интерфейс репозитория бронирований
// Сервису слотов нужны только агрегаты по активным бронированиям
type BookingRepository interface {
	SumActiveGroupSize(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error)
	CountActiveBySlotID(ctx context.Context, slotID int64) (int, error)
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
