package create_booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	visitorRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/visitor"
	"github.com/m04kA/VMS-VisitService/internal/integrations/notifyservice"
	"github.com/m04kA/VMS-VisitService/pkg/ptr"
)

// Стабы контрактов use case

type bookingRepoStub struct {
	createFn func(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	sumFn    func(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error)
}

func (s *bookingRepoStub) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	return s.createFn(ctx, booking)
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

type visitorRepoStub struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.Visitor, error)
}

func (s *visitorRepoStub) GetByID(ctx context.Context, id int64) (*domain.Visitor, error) {
	return s.getByIDFn(ctx, id)
}

type reconcilerStub struct {
	calls []int64
}

func (r *reconcilerStub) ReconcileBookedCount(ctx context.Context, slotID int64) (int, error) {
	r.calls = append(r.calls, slotID)
	return 0, nil
}

type notifierStub struct {
	events []notifyservice.EventType
}

func (n *notifierStub) NotifyBookingEvent(ctx context.Context, bookingID int64, eventType notifyservice.EventType) error {
	n.events = append(n.events, eventType)
	return nil
}

type passthroughTxManager struct{}

func (m *passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, v ...interface{})  {}
func (l *nopLogger) Warn(format string, v ...interface{})  {}
func (l *nopLogger) Error(format string, v ...interface{}) {}

func knownVisitor() *visitorRepoStub {
	return &visitorRepoStub{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Visitor, error) {
			return &domain.Visitor{ID: id, FullName: "Иван Петров"}, nil
		},
	}
}

func availableSlot(capacity int) *slotRepoStub {
	return &slotRepoStub{
		getForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
			return &domain.VisitSlot{ID: id, Capacity: capacity, Status: domain.SlotStatusAvailable}, nil
		},
	}
}

func validRequest() *Request {
	return &Request{
		SlotID:    5,
		VisitorID: 3,
		GroupSize: 4,
		CreatedBy: 7,
	}
}

func TestUseCase_Execute(t *testing.T) {
	t.Run("creates tentative booking and reconciles slot", func(t *testing.T) {
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				assert.Nil(t, exclude)
				return 10, nil
			},
			createFn: func(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
				assert.Equal(t, domain.StatusTentative, booking.Status)
				assert.Equal(t, domain.PaymentPending, booking.PaymentStatus)
				created := *booking
				created.ID = 100
				return &created, nil
			},
		}
		reconciler := &reconcilerStub{}
		notifier := &notifierStub{}

		uc := NewUseCase(bookings, availableSlot(20), knownVisitor(), reconciler,
			&passthroughTxManager{}, notifier, &nopLogger{})

		resp, err := uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)

		assert.Equal(t, int64(100), resp.ID)
		assert.Equal(t, "tentative", resp.Status)
		assert.Equal(t, []int64{5}, reconciler.calls)
		assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingCreated}, notifier.events)
	})

	t.Run("rejects group that does not fit", func(t *testing.T) {
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return 17, nil
			},
		}
		reconciler := &reconcilerStub{}

		uc := NewUseCase(bookings, availableSlot(20), knownVisitor(), reconciler,
			&passthroughTxManager{}, &notifierStub{}, &nopLogger{})

		// 17 занято из 20, запрос на 4 не помещается
		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Empty(t, reconciler.calls)
	})

	t.Run("fills slot exactly to capacity", func(t *testing.T) {
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return 16, nil
			},
			createFn: func(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
				created := *booking
				created.ID = 101
				return &created, nil
			},
		}

		uc := NewUseCase(bookings, availableSlot(20), knownVisitor(), &reconcilerStub{},
			&passthroughTxManager{}, &notifierStub{}, &nopLogger{})

		resp, err := uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(101), resp.ID)
	})

	t.Run("rejects slot under maintenance", func(t *testing.T) {
		maintenance := &slotRepoStub{
			getForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return &domain.VisitSlot{ID: id, Capacity: 20, Status: domain.SlotStatusMaintenance}, nil
			},
		}

		uc := NewUseCase(&bookingRepoStub{}, maintenance, knownVisitor(), &reconcilerStub{},
			&passthroughTxManager{}, &notifierStub{}, &nopLogger{})

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrSlotNotBookable)
	})

	t.Run("slot not found", func(t *testing.T) {
		missing := &slotRepoStub{
			getForUpdateFn: func(ctx context.Context, id int64) (*domain.VisitSlot, error) {
				return nil, slotRepo.ErrSlotNotFound
			},
		}

		uc := NewUseCase(&bookingRepoStub{}, missing, knownVisitor(), &reconcilerStub{},
			&passthroughTxManager{}, &notifierStub{}, &nopLogger{})

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("visitor not found", func(t *testing.T) {
		unknown := &visitorRepoStub{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Visitor, error) {
				return nil, visitorRepo.ErrVisitorNotFound
			},
		}

		uc := NewUseCase(&bookingRepoStub{}, availableSlot(20), unknown, &reconcilerStub{},
			&passthroughTxManager{}, &notifierStub{}, &nopLogger{})

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrVisitorNotFound)
	})

	t.Run("two requests for the last seats, first committer wins", func(t *testing.T) {
		// Блокировка строки слота сериализует конкурентные заявки:
		// вторая видит в живой сумме вклад первой
		var nextID int64 = 200
		active := 14
		bookings := &bookingRepoStub{
			sumFn: func(ctx context.Context, slotID int64, exclude *int64) (int, error) {
				return active, nil
			},
			createFn: func(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
				active += booking.GroupSize
				created := *booking
				nextID++
				created.ID = nextID
				return &created, nil
			},
		}
		reconciler := &reconcilerStub{}

		uc := NewUseCase(bookings, availableSlot(20), knownVisitor(), reconciler,
			&passthroughTxManager{}, &notifierStub{}, &nopLogger{})

		// 14 занято из 20, обе заявки просят по 4 места
		first, err := uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(201), first.ID)

		_, err = uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		// Кэш пересчитан только для успешной заявки
		assert.Equal(t, []int64{5}, reconciler.calls)
		assert.Equal(t, 18, active)
	})

	t.Run("validation errors", func(t *testing.T) {
		uc := NewUseCase(&bookingRepoStub{}, availableSlot(20), knownVisitor(), &reconcilerStub{},
			&passthroughTxManager{}, &notifierStub{}, &nopLogger{})

		tests := []struct {
			name   string
			mutate func(req *Request)
		}{
			{"zero slot id", func(req *Request) { req.SlotID = 0 }},
			{"zero visitor id", func(req *Request) { req.VisitorID = 0 }},
			{"group size too small", func(req *Request) { req.GroupSize = 0 }},
			{"group size too large", func(req *Request) { req.GroupSize = domain.MaxGroupSize + 1 }},
			{"negative amount", func(req *Request) { req.TotalAmount = ptr.Ptr(-10.0) }},
			{"blank payment method", func(req *Request) { req.PaymentMethod = ptr.Ptr("  ") }},
			{"unknown payment status", func(req *Request) { req.PaymentStatus = ptr.Ptr("bogus") }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := validRequest()
				tt.mutate(req)

				_, err := uc.Execute(context.Background(), req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}
