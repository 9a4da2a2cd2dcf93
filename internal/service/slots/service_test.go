package slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
	"github.com/m04kA/VMS-VisitService/pkg/ptr"
	"github.com/m04kA/VMS-VisitService/pkg/types"
)

// Стабы контрактов сервиса

type slotRepoStub struct {
	createFn            func(ctx context.Context, slot *domain.VisitSlot) (*domain.VisitSlot, error)
	getByIDFn           func(ctx context.Context, id int64) (*domain.VisitSlot, error)
	getByIDForUpdateFn  func(ctx context.Context, id int64) (*domain.VisitSlot, error)
	listByDateFn        func(ctx context.Context, date time.Time) ([]*domain.VisitSlot, error)
	listFn              func(ctx context.Context, filter domain.SlotsFilter) ([]*domain.VisitSlot, error)
	updateFn            func(ctx context.Context, slot *domain.VisitSlot) error
	updateBookedCountFn func(ctx context.Context, id int64, bookedCount int) error
	deleteFn            func(ctx context.Context, id int64) error
	expirePastFn        func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (s *slotRepoStub) Create(ctx context.Context, slot *domain.VisitSlot) (*domain.VisitSlot, error) {
	return s.createFn(ctx, slot)
}

func (s *slotRepoStub) GetByID(ctx context.Context, id int64) (*domain.VisitSlot, error) {
	return s.getByIDFn(ctx, id)
}

func (s *slotRepoStub) GetByIDForUpdate(ctx context.Context, id int64) (*domain.VisitSlot, error) {
	return s.getByIDForUpdateFn(ctx, id)
}

func (s *slotRepoStub) ListByDate(ctx context.Context, date time.Time) ([]*domain.VisitSlot, error) {
	return s.listByDateFn(ctx, date)
}

func (s *slotRepoStub) List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.VisitSlot, error) {
	return s.listFn(ctx, filter)
}

func (s *slotRepoStub) Update(ctx context.Context, slot *domain.VisitSlot) error {
	return s.updateFn(ctx, slot)
}

func (s *slotRepoStub) UpdateBookedCount(ctx context.Context, id int64, bookedCount int) error {
	return s.updateBookedCountFn(ctx, id, bookedCount)
}

func (s *slotRepoStub) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *slotRepoStub) ExpirePastUnbooked(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.expirePastFn(ctx, cutoff)
}

type bookingRepoStub struct {
	sumFn   func(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error)
	countFn func(ctx context.Context, slotID int64) (int, error)
}

func (s *bookingRepoStub) SumActiveGroupSize(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error) {
	return s.sumFn(ctx, slotID, excludeBookingID)
}

func (s *bookingRepoStub) CountActiveBySlotID(ctx context.Context, slotID int64) (int, error) {
	return s.countFn(ctx, slotID)
}

// passthroughTxManager выполняет fn без реальной транзакции
type passthroughTxManager struct{}

func (m *passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, v ...interface{})  {}
func (l *nopLogger) Warn(format string, v ...interface{})  {}
func (l *nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time {
	return f.now
}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService(slots *slotRepoStub, bookings *bookingRepoStub) *Service {
	return NewService(slots, bookings, &passthroughTxManager{}, &nopLogger{}).
		WithTimeProvider(&fixedTime{now: testNow})
}

func TestService_Create(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates slot when window is free", func(t *testing.T) {
		slots := &slotRepoStub{
			listByDateFn: func(ctx context.Context, d time.Time) ([]*domain.VisitSlot, error) {
				return []*domain.VisitSlot{
					{ID: 1, Date: date, StartTime: "08:00", EndTime: "09:00"},
				}, nil
			},
			createFn: func(ctx context.Context, slot *domain.VisitSlot) (*domain.VisitSlot, error) {
				created := *slot
				created.ID = 42
				return &created, nil
			},
		}

		svc := newTestService(slots, &bookingRepoStub{})

		resp, err := svc.Create(context.Background(), &models.CreateSlotRequest{
			Date:      date,
			StartTime: "10:00",
			EndTime:   "11:30",
			Capacity:  25,
			CreatedBy: 7,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, "available", resp.Status)
		assert.Equal(t, 90, resp.DurationMinutes)
		assert.Equal(t, 0, resp.BookedCount)
	})

	t.Run("rejects overlapping window", func(t *testing.T) {
		slots := &slotRepoStub{
			listByDateFn: func(ctx context.Context, d time.Time) ([]*domain.VisitSlot, error) {
				return []*domain.VisitSlot{
					{ID: 1, Date: date, StartTime: "10:00", EndTime: "11:00"},
				}, nil
			},
		}

		svc := newTestService(slots, &bookingRepoStub{})

		_, err := svc.Create(context.Background(), &models.CreateSlotRequest{
			Date:      date,
			StartTime: "10:30",
			EndTime:   "11:30",
			Capacity:  25,
			CreatedBy: 7,
		})
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("allows touching windows", func(t *testing.T) {
		slots := &slotRepoStub{
			listByDateFn: func(ctx context.Context, d time.Time) ([]*domain.VisitSlot, error) {
				return []*domain.VisitSlot{
					{ID: 1, Date: date, StartTime: "10:00", EndTime: "11:00"},
				}, nil
			},
			createFn: func(ctx context.Context, slot *domain.VisitSlot) (*domain.VisitSlot, error) {
				created := *slot
				created.ID = 43
				return &created, nil
			},
		}

		svc := newTestService(slots, &bookingRepoStub{})

		resp, err := svc.Create(context.Background(), &models.CreateSlotRequest{
			Date:      date,
			StartTime: "11:00",
			EndTime:   "12:00",
			Capacity:  25,
			CreatedBy: 7,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(43), resp.ID)
	})

	t.Run("rejects past date", func(t *testing.T) {
		svc := newTestService(&slotRepoStub{}, &bookingRepoStub{})

		_, err := svc.Create(context.Background(), &models.CreateSlotRequest{
			Date:      testNow.AddDate(0, 0, -1),
			StartTime: "10:00",
			EndTime:   "11:00",
			Capacity:  25,
			CreatedBy: 7,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects duration out of range", func(t *testing.T) {
		svc := newTestService(&slotRepoStub{}, &bookingRepoStub{})

		_, err := svc.Create(context.Background(), &models.CreateSlotRequest{
			Date:      date,
			StartTime: "10:00",
			EndTime:   "10:10",
			Capacity:  25,
			CreatedBy: 7,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_Update(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	current := func() *domain.VisitSlot {
		return &domain.VisitSlot{
			ID:              5,
			Date:            date,
			StartTime:       "10:00",
			EndTime:         "11:00",
			DurationMinutes: 60,
			Capacity:        20,
			BookedCount:     12,
			Status:          domain.SlotStatusAvailable,
		}
	}

	t.Run("rejects capacity below committed bookings", func(t *testing.T) {
		slots := &slotRepoStub{
			getByIDForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return current(), nil
			},
		}
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return 12, nil
			},
		}

		svc := newTestService(slots, bookings)

		_, err := svc.Update(context.Background(), 5, &models.UpdateSlotRequest{
			UserID:   7,
			Capacity: ptr.Ptr(10),
		})
		assert.ErrorIs(t, err, ErrCapacityBelowBooked)
	})

	t.Run("accepts capacity matching committed bookings", func(t *testing.T) {
		slots := &slotRepoStub{
			getByIDForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return current(), nil
			},
			updateFn: func(ctx context.Context, slot *domain.VisitSlot) error {
				return nil
			},
		}
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return 12, nil
			},
		}

		svc := newTestService(slots, bookings)

		resp, err := svc.Update(context.Background(), 5, &models.UpdateSlotRequest{
			UserID:   7,
			Capacity: ptr.Ptr(12),
		})
		require.NoError(t, err)
		assert.Equal(t, 12, resp.Capacity)
	})

	t.Run("re-checks overlap when window changes", func(t *testing.T) {
		slots := &slotRepoStub{
			getByIDForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return current(), nil
			},
			listByDateFn: func(ctx context.Context, d time.Time) ([]*domain.VisitSlot, error) {
				return []*domain.VisitSlot{
					current(),
					{ID: 6, Date: date, StartTime: "12:00", EndTime: "13:00"},
				}, nil
			},
		}

		svc := newTestService(slots, &bookingRepoStub{})

		_, err := svc.Update(context.Background(), 5, &models.UpdateSlotRequest{
			UserID:    7,
			StartTime: ptr.Ptr(types.TimeString("12:30")),
			EndTime:   ptr.Ptr(types.TimeString("13:30")),
		})
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("slot not found", func(t *testing.T) {
		slots := &slotRepoStub{
			getByIDForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return nil, slotRepo.ErrSlotNotFound
			},
		}

		svc := newTestService(slots, &bookingRepoStub{})

		_, err := svc.Update(context.Background(), 99, &models.UpdateSlotRequest{UserID: 7})
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("rejects slot with active bookings", func(t *testing.T) {
		slots := &slotRepoStub{
			getByIDForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return &domain.VisitSlot{ID: id}, nil
			},
		}
		bookings := &bookingRepoStub{
			countFn: func(ctx context.Context, slotID int64) (int, error) {
				return 3, nil
			},
		}

		svc := newTestService(slots, bookings)

		err := svc.Delete(context.Background(), 5, 7)
		assert.ErrorIs(t, err, ErrSlotHasActiveBookings)
	})

	t.Run("deletes slot without active bookings", func(t *testing.T) {
		deleted := false
		slots := &slotRepoStub{
			getByIDForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return &domain.VisitSlot{ID: id}, nil
			},
			deleteFn: func(ctx context.Context, id int64) error {
				deleted = true
				return nil
			},
		}
		bookings := &bookingRepoStub{
			countFn: func(ctx context.Context, slotID int64) (int, error) {
				return 0, nil
			},
		}

		svc := newTestService(slots, bookings)

		require.NoError(t, svc.Delete(context.Background(), 5, 7))
		assert.True(t, deleted)
	})
}

func TestService_ExpirePastUnbookedSlots(t *testing.T) {
	t.Run("uses midnight of reference date as cutoff", func(t *testing.T) {
		var gotCutoff time.Time
		slots := &slotRepoStub{
			expirePastFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
				gotCutoff = cutoff
				return 4, nil
			},
		}

		svc := newTestService(slots, &bookingRepoStub{})

		reference := time.Date(2026, 9, 10, 15, 30, 0, 0, time.UTC)
		resp, err := svc.ExpirePastUnbookedSlots(context.Background(), &models.ExpireSlotsRequest{
			ReferenceDate: &reference,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(4), resp.ExpiredCount)
		assert.Equal(t, "2026-09-10", resp.CutoffDate)
		assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), gotCutoff)
	})

	t.Run("defaults cutoff to current day", func(t *testing.T) {
		var gotCutoff time.Time
		slots := &slotRepoStub{
			expirePastFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
				gotCutoff = cutoff
				return 0, nil
			},
		}

		svc := newTestService(slots, &bookingRepoStub{})

		resp, err := svc.ExpirePastUnbookedSlots(context.Background(), &models.ExpireSlotsRequest{})
		require.NoError(t, err)

		assert.Equal(t, int64(0), resp.ExpiredCount)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), gotCutoff)
	})
}
