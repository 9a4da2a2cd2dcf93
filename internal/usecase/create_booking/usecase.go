package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	visitorRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/visitor"
	"github.com/m04kA/VMS-VisitService/internal/integrations/notifyservice"
)

// UseCase use case для создания бронирования
// Проверка вместимости и вставка выполняются одним атомарным блоком:
// сериализуемая транзакция + блокировка строки слота (FOR UPDATE)
// Из двух конкурентных заявок на последние места выигрывает та, что
// закоммитится первой; вторая получает ErrCapacityExceeded
type UseCase struct {
	bookingRepo BookingRepository
	slotRepo    SlotRepository
	visitorRepo VisitorRepository
	reconciler  CapacityReconciler
	txManager   TransactionManager
	notifier    Notifier
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	visitorRepo VisitorRepository,
	reconciler CapacityReconciler,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		visitorRepo: visitorRepo,
		reconciler:  reconciler,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: slot=%d, visitor=%d, group_size=%d, created_by=%d",
		req.SlotID, req.VisitorID, req.GroupSize, req.CreatedBy)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	paymentStatus, err := paymentStatusOrDefault(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем существование посетителя (вне транзакции - его
	// существование не участвует в гонке за вместимость)
	if _, err := uc.visitorRepo.GetByID(ctx, req.VisitorID); err != nil {
		if errors.Is(err, visitorRepo.ErrVisitorNotFound) {
			uc.logger.Warn("CreateBooking: visitor id=%d not found", req.VisitorID)
			return nil, ErrVisitorNotFound
		}
		uc.logger.Error("CreateBooking: failed to get visitor id=%d: %v", req.VisitorID, err)
		return nil, fmt.Errorf("%w: failed to get visitor: %v", ErrInternal, err)
	}

	var result *domain.Booking

	// 3. Проверка вместимости и вставка - один атомарный блок
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем строку слота - конкурентные заявки на этот слот
		// дальше этой точки идут по одной
		slot, err := uc.slotRepo.GetByIDForUpdate(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateBooking: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateBooking: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		if !slot.IsBookable() {
			uc.logger.Warn("CreateBooking: slot id=%d is not bookable, status=%s", slot.ID, slot.Status)
			return fmt.Errorf("%w: slot status is %q", ErrSlotNotBookable, slot.Status)
		}

		// 3.2. Считаем занято по живым строкам бронирований, не по кэшу
		booked, err := uc.bookingRepo.SumActiveGroupSize(txCtx, req.SlotID, nil)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to sum active bookings for slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to sum active bookings: %v", ErrInternal, err)
		}

		available := slot.Capacity - booked
		if req.GroupSize > available {
			uc.logger.Warn("CreateBooking: capacity exceeded for slot id=%d: requested=%d, available=%d/%d",
				req.SlotID, req.GroupSize, available, slot.Capacity)
			return fmt.Errorf("%w: requested=%d, available=%d", ErrCapacityExceeded, req.GroupSize, available)
		}

		uc.logger.Info("CreateBooking: slot id=%d has capacity, %d/%d taken", req.SlotID, booked, slot.Capacity)

		// 3.3. Создаем бронирование в статусе tentative
		newBooking := &domain.Booking{
			SlotID:          req.SlotID,
			VisitorID:       req.VisitorID,
			GroupSize:       req.GroupSize,
			Status:          domain.StatusTentative,
			TotalAmount:     amountOrZero(req.TotalAmount),
			PaymentStatus:   paymentStatus,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
			SpecialRequests: req.SpecialRequests,
			CreatedBy:       req.CreatedBy,
		}

		created, err := uc.bookingRepo.Create(txCtx, newBooking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 3.4. Пересчитываем кэш booked_count в этой же транзакции
		if _, err := uc.reconciler.ReconcileBookedCount(txCtx, req.SlotID); err != nil {
			uc.logger.Error("CreateBooking: failed to reconcile booked_count for slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to reconcile booked_count: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 4. Сигнал диспетчеру уведомлений - после коммита, ошибки не влияют
	// на результат операции
	if err := uc.notifier.NotifyBookingEvent(ctx, result.ID, notifyservice.EventBookingCreated); err != nil {
		uc.logger.Error("CreateBooking: failed to dispatch notification for booking id=%d: %v", result.ID, err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return &Response{
		ID:              result.ID,
		SlotID:          result.SlotID,
		VisitorID:       result.VisitorID,
		GroupSize:       result.GroupSize,
		Status:          string(result.Status),
		TotalAmount:     result.TotalAmount,
		PaymentStatus:   string(result.PaymentStatus),
		PaymentMethod:   result.PaymentMethod,
		Notes:           result.Notes,
		SpecialRequests: result.SpecialRequests,
		CreatedBy:       result.CreatedBy,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// amountOrZero возвращает сумму из запроса или 0
func amountOrZero(amount *float64) float64 {
	if amount == nil {
		return 0
	}
	return *amount
}
