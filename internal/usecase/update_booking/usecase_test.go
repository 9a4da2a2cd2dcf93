package update_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	bookingRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/booking"
	slotStorage "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	"github.com/m04kA/VMS-VisitService/pkg/ptr"
)

// Стабы контрактов use case

// Репозитории хранилища должны удовлетворять контрактам use case
var (
	_ BookingRepository = (*bookingRepo.Repository)(nil)
	_ SlotRepository    = (*slotStorage.Repository)(nil)
)

type bookingRepoStub struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.Booking, error)
	updateFn  func(ctx context.Context, booking *domain.Booking) error
	sumFn     func(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error)
}

func (s *bookingRepoStub) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.getByIDFn(ctx, id)
}

func (s *bookingRepoStub) Update(ctx context.Context, booking *domain.Booking) error {
	return s.updateFn(ctx, booking)
}

func (s *bookingRepoStub) SumActiveGroupSize(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error) {
	return s.sumFn(ctx, slotID, excludeBookingID)
}

type slotRepoStub struct {
	getForUpdateFn func(ctx context.Context, id int64) (*domain.VisitSlot, error)
}

func (s *slotRepoStub) GetByIDForUpdate(ctx context.Context, id int64) (*domain.VisitSlot, error) {
	return s.getForUpdateFn(ctx, id)
}

type reconcilerStub struct {
	calls []int64
}

func (r *reconcilerStub) ReconcileBookedCount(ctx context.Context, slotID int64) (int, error) {
	r.calls = append(r.calls, slotID)
	return 0, nil
}

type passthroughTxManager struct{}

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

func (t *fixedTime) Now() time.Time {
	return t.now
}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func tentativeBooking() *domain.Booking {
	return &domain.Booking{
		ID:            10,
		SlotID:        5,
		VisitorID:     3,
		GroupSize:     4,
		Status:        domain.StatusTentative,
		PaymentStatus: domain.PaymentPending,
		CreatedBy:     7,
	}
}

func acceptUpdate(ctx context.Context, booking *domain.Booking) error {
	return nil
}

func TestUseCase_Execute_GroupSize(t *testing.T) {
	slots := &slotRepoStub{
		getForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
			return &domain.VisitSlot{ID: id, Capacity: 20, Status: domain.SlotStatusAvailable}, nil
		},
	}

	t.Run("grow excludes own contribution from the sum", func(t *testing.T) {
		var gotExclude *int64
		bookings := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return tentativeBooking(), nil
			},
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				gotExclude = exclude
				// 16 занято другими бронированиями, собственные 4 не в счёте
				return 16, nil
			},
			updateFn: acceptUpdate,
		}
		reconciler := &reconcilerStub{}

		uc := NewUseCase(bookings, slots, reconciler, &passthroughTxManager{}, &nopLogger{})

		// Размер не меняется - пересчёта вместимости нет
		resp, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			GroupSize: ptr.Ptr(4),
			UserID:    7,
		})
		require.NoError(t, err)
		assert.Nil(t, gotExclude)
		assert.Equal(t, 4, resp.GroupSize)

		_, err = uc.Execute(context.Background(), &Request{
			BookingID: 10,
			GroupSize: ptr.Ptr(6),
			UserID:    7,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		require.NotNil(t, gotExclude)
		assert.Equal(t, int64(10), *gotExclude)
	})

	t.Run("grow within remaining capacity succeeds", func(t *testing.T) {
		bookings := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return tentativeBooking(), nil
			},
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				require.NotNil(t, exclude)
				assert.Equal(t, int64(10), *exclude)
				return 12, nil
			},
			updateFn: acceptUpdate,
		}
		reconciler := &reconcilerStub{}

		uc := NewUseCase(bookings, slots, reconciler, &passthroughTxManager{}, &nopLogger{})

		// 12 чужих, вместимость 20: рост с 4 до 8 помещается
		resp, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			GroupSize: ptr.Ptr(8),
			UserID:    7,
		})
		require.NoError(t, err)
		assert.Equal(t, 8, resp.GroupSize)
		assert.Equal(t, []int64{5}, reconciler.calls)
	})

	t.Run("shrink always succeeds", func(t *testing.T) {
		bookings := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return tentativeBooking(), nil
			},
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return 16, nil
			},
			updateFn: acceptUpdate,
		}

		uc := NewUseCase(bookings, slots, &reconcilerStub{}, &passthroughTxManager{}, &nopLogger{})

		resp, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			GroupSize: ptr.Ptr(2),
			UserID:    7,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.GroupSize)
	})
}

func TestUseCase_Execute_StatusChanges(t *testing.T) {
	newUseCase := func(booking *domain.Booking) (*UseCase, *reconcilerStub) {
		bookings := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				copied := *booking
				return &copied, nil
			},
			updateFn: acceptUpdate,
		}
		reconciler := &reconcilerStub{}
		uc := NewUseCase(bookings, &slotRepoStub{}, reconciler, &passthroughTxManager{}, &nopLogger{}).
			WithTimeProvider(&fixedTime{now: testNow})
		return uc, reconciler
	}

	t.Run("confirm sets confirmed_at", func(t *testing.T) {
		uc, _ := newUseCase(tentativeBooking())

		resp, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			Status:    ptr.Ptr("confirmed"),
			UserID:    7,
		})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
		require.NotNil(t, resp.ConfirmedAt)
		assert.Equal(t, testNow, *resp.ConfirmedAt)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		uc, _ := newUseCase(tentativeBooking())

		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			Status:    ptr.Ptr("cancelled"),
			UserID:    7,
		})
		assert.ErrorIs(t, err, ErrReasonRequired)

		_, err = uc.Execute(context.Background(), &Request{
			BookingID:          10,
			Status:             ptr.Ptr("cancelled"),
			CancellationReason: ptr.Ptr("   "),
			UserID:             7,
		})
		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("cancel records reason and cancelled_at", func(t *testing.T) {
		uc, reconciler := newUseCase(tentativeBooking())

		resp, err := uc.Execute(context.Background(), &Request{
			BookingID:          10,
			Status:             ptr.Ptr("cancelled"),
			CancellationReason: ptr.Ptr("изменились планы"),
			UserID:             7,
		})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		require.NotNil(t, resp.CancellationReason)
		assert.Equal(t, "изменились планы", *resp.CancellationReason)
		require.NotNil(t, resp.CancelledAt)
		assert.Equal(t, testNow, *resp.CancelledAt)
		assert.Equal(t, []int64{5}, reconciler.calls)
	})

	t.Run("invalid transition", func(t *testing.T) {
		booking := tentativeBooking()
		booking.Status = domain.StatusCompleted
		uc, _ := newUseCase(booking)

		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			Status:    ptr.Ptr("confirmed"),
			UserID:    7,
		})
		assert.ErrorIs(t, err, ErrBookingNotEditable)
	})

	t.Run("cancelled booking is not editable", func(t *testing.T) {
		booking := tentativeBooking()
		booking.Status = domain.StatusCancelled
		uc, _ := newUseCase(booking)

		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			Notes:     ptr.Ptr("новая заметка"),
			UserID:    7,
		})
		assert.ErrorIs(t, err, ErrBookingNotEditable)
	})

	t.Run("confirmed cannot go back to tentative", func(t *testing.T) {
		booking := tentativeBooking()
		booking.Status = domain.StatusConfirmed
		uc, _ := newUseCase(booking)

		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 10,
			Status:    ptr.Ptr("tentative"),
			UserID:    7,
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestUseCase_Execute_FieldUpdates(t *testing.T) {
	t.Run("updates only the provided fields", func(t *testing.T) {
		var saved *domain.Booking
		bookings := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				booking := tentativeBooking()
				booking.TotalAmount = 1500
				booking.Notes = ptr.Ptr("старая заметка")
				return booking, nil
			},
			updateFn: func(ctx context.Context, booking *domain.Booking) error {
				saved = booking
				return nil
			},
		}

		uc := NewUseCase(bookings, &slotRepoStub{}, &reconcilerStub{}, &passthroughTxManager{}, &nopLogger{})

		resp, err := uc.Execute(context.Background(), &Request{
			BookingID:     10,
			PaymentStatus: ptr.Ptr("paid"),
			PaymentMethod: ptr.Ptr("card"),
			UserID:        7,
		})
		require.NoError(t, err)

		assert.Equal(t, "paid", resp.PaymentStatus)
		require.NotNil(t, resp.PaymentMethod)
		assert.Equal(t, "card", *resp.PaymentMethod)

		// Непереданные поля не трогаем
		assert.Equal(t, float64(1500), saved.TotalAmount)
		require.NotNil(t, saved.Notes)
		assert.Equal(t, "старая заметка", *saved.Notes)
		assert.Equal(t, 4, saved.GroupSize)
	})

	t.Run("unknown payment status fails before the transaction", func(t *testing.T) {
		uc := NewUseCase(&bookingRepoStub{}, &slotRepoStub{}, &reconcilerStub{},
			&passthroughTxManager{}, &nopLogger{})

		_, err := uc.Execute(context.Background(), &Request{
			BookingID:     10,
			PaymentStatus: ptr.Ptr("bogus"),
			UserID:        7,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("booking not found", func(t *testing.T) {
		bookings := &bookingRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return nil, bookingRepo.ErrBookingNotFound
			},
		}

		uc := NewUseCase(bookings, &slotRepoStub{}, &reconcilerStub{}, &passthroughTxManager{}, &nopLogger{})

		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 99,
			Notes:     ptr.Ptr("заметка"),
			UserID:    7,
		})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}
