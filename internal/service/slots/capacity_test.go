package slots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	"github.com/m04kA/VMS-VisitService/pkg/ptr"
)

func TestService_ComputeAvailableCapacity(t *testing.T) {
	slots := &slotRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
			// Кэш намеренно рассинхронизирован с живым агрегатом
			return &domain.VisitSlot{ID: id, Capacity: 30, BookedCount: 5}, nil
		},
	}
	bookings := &bookingRepoStub{
		sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
			return 18, nil
		},
	}

	svc := newTestService(slots, bookings)

	availability, err := svc.ComputeAvailableCapacity(context.Background(), 5)
	require.NoError(t, err)

	// Считаем по живым бронированиям, кэш booked_count игнорируется
	assert.Equal(t, 30, availability.Capacity)
	assert.Equal(t, 18, availability.Booked)
	assert.Equal(t, 12, availability.Available)
}

func TestService_CheckAvailability(t *testing.T) {
	slots := &slotRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
			return &domain.VisitSlot{ID: id, Capacity: 20}, nil
		},
	}

	t.Run("group fits", func(t *testing.T) {
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return 15, nil
			},
		}

		svc := newTestService(slots, bookings)

		resp, err := svc.CheckAvailability(context.Background(), 5, 5, nil)
		require.NoError(t, err)
		assert.True(t, resp.IsAvailable)
		assert.Equal(t, 5, resp.Available)
	})

	t.Run("group does not fit", func(t *testing.T) {
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return 15, nil
			},
		}

		svc := newTestService(slots, bookings)

		resp, err := svc.CheckAvailability(context.Background(), 5, 6, nil)
		require.NoError(t, err)
		assert.False(t, resp.IsAvailable)
	})

	t.Run("excludes own booking contribution", func(t *testing.T) {
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				if exclude != nil {
					return 10, nil
				}
				return 18, nil
			},
		}

		svc := newTestService(slots, bookings)

		// Без исключения свободно 2 места, с исключением собственного
		// бронирования - 10
		resp, err := svc.CheckAvailability(context.Background(), 5, 8, ptr.Ptr(int64(77)))
		require.NoError(t, err)
		assert.True(t, resp.IsAvailable)
		assert.Equal(t, 10, resp.Booked)
		assert.Equal(t, 10, resp.Available)
	})

	t.Run("rejects non-positive group size", func(t *testing.T) {
		svc := newTestService(slots, &bookingRepoStub{})

		_, err := svc.CheckAvailability(context.Background(), 5, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("slot not found", func(t *testing.T) {
		missing := &slotRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return nil, slotRepo.ErrSlotNotFound
			},
		}

		svc := newTestService(missing, &bookingRepoStub{})

		_, err := svc.CheckAvailability(context.Background(), 99, 2, nil)
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})
}

func TestService_ReconcileBookedCount(t *testing.T) {
	var written int
	slots := &slotRepoStub{
		updateBookedCountFn: func(ctx context.Context, id int64, bookedCount int) error {
			written = bookedCount
			return nil
		},
	}
	bookings := &bookingRepoStub{
		sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
			return 23, nil
		},
	}

	svc := newTestService(slots, bookings)

	booked, err := svc.ReconcileBookedCount(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 23, booked)
	assert.Equal(t, 23, written)

	// Идемпотентность: повторный вызов даёт тот же результат
	booked, err = svc.ReconcileBookedCount(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 23, booked)
}
