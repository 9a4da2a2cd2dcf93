package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	bookingRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/booking"
	"github.com/m04kA/VMS-VisitService/internal/integrations/notifyservice"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

// Репозиторий хранилища должен удовлетворять контракту сервиса
var _ BookingRepository = (*bookingRepo.Repository)(nil)

// Стабы контрактов сервиса

type bookingRepoStub struct {
	getByIDFn  func(ctx context.Context, id int64) (*domain.Booking, error)
	listFn     func(ctx context.Context, filter domain.BookingsFilter, page domain.Pagination) ([]*domain.Booking, int64, error)
	confirmFn  func(ctx context.Context, id int64, confirmedAt time.Time) error
	cancelFn   func(ctx context.Context, id int64, reason string, cancelledAt time.Time) error
	deleteFn   func(ctx context.Context, id int64) error
	getStatsFn func(ctx context.Context, windowDays int, now time.Time) (*domain.BookingStats, error)
}

func (s *bookingRepoStub) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.getByIDFn(ctx, id)
}

func (s *bookingRepoStub) List(ctx context.Context, filter domain.BookingsFilter, page domain.Pagination) ([]*domain.Booking, int64, error) {
	return s.listFn(ctx, filter, page)
}

func (s *bookingRepoStub) Confirm(ctx context.Context, id int64, confirmedAt time.Time) error {
	return s.confirmFn(ctx, id, confirmedAt)
}

func (s *bookingRepoStub) Cancel(ctx context.Context, id int64, reason string, cancelledAt time.Time) error {
	return s.cancelFn(ctx, id, reason, cancelledAt)
}

func (s *bookingRepoStub) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *bookingRepoStub) GetStats(ctx context.Context, windowDays int, now time.Time) (*domain.BookingStats, error) {
	return s.getStatsFn(ctx, windowDays, now)
}

type reconcilerStub struct {
	calls  []int64
	result int
}

func (r *reconcilerStub) ReconcileBookedCount(ctx context.Context, slotID int64) (int, error) {
	r.calls = append(r.calls, slotID)
	return r.result, nil
}

type notifierStub struct {
	events []notifyservice.EventType
}

func (n *notifierStub) NotifyBookingEvent(ctx context.Context, bookingID int64, eventType notifyservice.EventType) error {
	n.events = append(n.events, eventType)
	return nil
}

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

func newTestService(repo *bookingRepoStub, reconciler *reconcilerStub, notifier *notifierStub) *Service {
	return NewService(repo, reconciler, &passthroughTxManager{}, notifier, &nopLogger{}).
		WithTimeProvider(&fixedTime{now: testNow})
}

func TestService_Confirm(t *testing.T) {
	t.Run("confirms tentative booking and reconciles slot", func(t *testing.T) {
		repo := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return &domain.Booking{ID: id, SlotID: 5, Status: domain.StatusTentative}, nil
			},
			confirmFn: func(ctx context.Context, id int64, confirmedAt time.Time) error {
				assert.Equal(t, testNow, confirmedAt)
				return nil
			},
		}
		reconciler := &reconcilerStub{}
		notifier := &notifierStub{}

		svc := newTestService(repo, reconciler, notifier)

		resp, err := svc.Confirm(context.Background(), 10, &models.ConfirmBookingRequest{UserID: 7})
		require.NoError(t, err)

		assert.Equal(t, "confirmed", resp.Status)
		assert.Equal(t, []int64{5}, reconciler.calls)
		assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingConfirmed}, notifier.events)
	})

	t.Run("rejects confirming cancelled booking", func(t *testing.T) {
		repo := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return &domain.Booking{ID: id, Status: domain.StatusCancelled}, nil
			},
		}

		svc := newTestService(repo, &reconcilerStub{}, &notifierStub{})

		_, err := svc.Confirm(context.Background(), 10, &models.ConfirmBookingRequest{UserID: 7})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("booking not found", func(t *testing.T) {
		repo := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return nil, bookingRepo.ErrBookingNotFound
			},
		}

		svc := newTestService(repo, &reconcilerStub{}, &notifierStub{})

		_, err := svc.Confirm(context.Background(), 99, &models.ConfirmBookingRequest{UserID: 7})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("requires a reason", func(t *testing.T) {
		svc := newTestService(&bookingRepoStub{}, &reconcilerStub{}, &notifierStub{})

		_, err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{
			UserID:             7,
			CancellationReason: "   ",
		})
		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("rejects oversized reason", func(t *testing.T) {
		svc := newTestService(&bookingRepoStub{}, &reconcilerStub{}, &notifierStub{})

		_, err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{
			UserID:             7,
			CancellationReason: strings.Repeat("x", domain.MaxCancellationReasonLength+1),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("cancels confirmed booking and reconciles slot", func(t *testing.T) {
		repo := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return &domain.Booking{ID: id, SlotID: 5, Status: domain.StatusConfirmed}, nil
			},
			cancelFn: func(ctx context.Context, id int64, reason string, cancelledAt time.Time) error {
				assert.Equal(t, "группа не приедет", reason)
				return nil
			},
		}
		reconciler := &reconcilerStub{}
		notifier := &notifierStub{}

		svc := newTestService(repo, reconciler, notifier)

		resp, err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{
			UserID:             7,
			CancellationReason: "группа не приедет",
		})
		require.NoError(t, err)

		assert.Equal(t, "cancelled", resp.Status)
		require.NotNil(t, resp.CancellationReason)
		assert.Equal(t, "группа не приедет", *resp.CancellationReason)
		assert.Equal(t, []int64{5}, reconciler.calls)
		assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingCancelled}, notifier.events)
	})

	t.Run("rejects double cancellation", func(t *testing.T) {
		repo := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return &domain.Booking{ID: id, Status: domain.StatusCancelled}, nil
			},
		}

		svc := newTestService(repo, &reconcilerStub{}, &notifierStub{})

		_, err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{
			UserID:             7,
			CancellationReason: "повторная отмена",
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("deletes booking and reconciles slot", func(t *testing.T) {
		deleted := false
		repo := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return &domain.Booking{ID: id, SlotID: 5, Status: domain.StatusTentative}, nil
			},
			deleteFn: func(ctx context.Context, id int64) error {
				deleted = true
				return nil
			},
		}
		reconciler := &reconcilerStub{}

		svc := newTestService(repo, reconciler, &notifierStub{})

		require.NoError(t, svc.Delete(context.Background(), 10, 7))
		assert.True(t, deleted)
		assert.Equal(t, []int64{5}, reconciler.calls)
	})

	t.Run("booking not found", func(t *testing.T) {
		repo := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return nil, bookingRepo.ErrBookingNotFound
			},
		}

		svc := newTestService(repo, &reconcilerStub{}, &notifierStub{})

		err := svc.Delete(context.Background(), 99, 7)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_List(t *testing.T) {
	t.Run("rejects unknown status in filter", func(t *testing.T) {
		svc := newTestService(&bookingRepoStub{}, &reconcilerStub{}, &notifierStub{})

		status := "bogus"
		_, err := svc.List(context.Background(), &models.ListBookingsRequest{Status: &status})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("normalizes pagination", func(t *testing.T) {
		var gotPage domain.Pagination
		repo := &bookingRepoStub{
			listFn: func(ctx context.Context, filter domain.BookingsFilter, page domain.Pagination) ([]*domain.Booking, int64, error) {
				gotPage = page
				return nil, 0, nil
			},
		}

		svc := newTestService(repo, &reconcilerStub{}, &notifierStub{})

		resp, err := svc.List(context.Background(), &models.ListBookingsRequest{Page: -1, Limit: 0})
		require.NoError(t, err)

		assert.Equal(t, domain.DefaultPage, gotPage.Page)
		assert.Equal(t, domain.DefaultLimit, gotPage.Limit)
		assert.Equal(t, int64(0), resp.Total)
		assert.Empty(t, resp.Bookings)
	})
}

func TestService_GetStats(t *testing.T) {
	var gotWindow int
	repo := &bookingRepoStub{
		getStatsFn: func(ctx context.Context, windowDays int, now time.Time) (*domain.BookingStats, error) {
			gotWindow = windowDays
			return &domain.BookingStats{
				TotalBookings: 12,
				ByStatus:      map[domain.BookingStatus]int64{domain.StatusConfirmed: 8},
			}, nil
		},
	}

	svc := newTestService(repo, &reconcilerStub{}, &notifierStub{})

	// Нулевое окно заменяется значением по умолчанию
	resp, err := svc.GetStats(context.Background(), &models.StatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStatsWindowDays, gotWindow)
	assert.Equal(t, int64(12), resp.TotalBookings)
	assert.Equal(t, int64(8), resp.ByStatus["confirmed"])

	_, err = svc.GetStats(context.Background(), &models.StatsRequest{WindowDays: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, gotWindow)
}
