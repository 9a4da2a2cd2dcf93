package update_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	bookingRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
)

// UseCase use case для обновления бронирования
// Изменение размера группы проходит под той же блокировкой строки слота,
// что и создание: вместимость пересчитывается по живым бронированиям
// без учёта текущего вклада самого бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	reconciler   CapacityReconciler
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	reconciler CapacityReconciler,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		reconciler:   reconciler,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case обновления бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateBooking: booking=%d, user=%d", req.BookingID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateBooking: validation failed: %v", err)
		return nil, err
	}

	var targetStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := parseBookingStatus(*req.Status)
		if err != nil {
			uc.logger.Warn("UpdateBooking: validation failed: %v", err)
			return nil, err
		}
		targetStatus = &status
	}

	if req.PaymentStatus != nil {
		if _, err := parsePaymentStatus(*req.PaymentStatus); err != nil {
			uc.logger.Warn("UpdateBooking: validation failed: %v", err)
			return nil, err
		}
	}

	var result *domain.Booking

	// 2. Чтение, проверки и запись - один атомарный блок
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("UpdateBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("UpdateBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if !booking.CanBeUpdated() {
			uc.logger.Warn("UpdateBooking: booking id=%d is not editable, status=%s", booking.ID, booking.Status)
			return fmt.Errorf("%w: booking status is %q", ErrBookingNotEditable, booking.Status)
		}

		// 2.1. Смена размера группы - повторная проверка вместимости
		// под блокировкой строки слота, собственный вклад исключается
		if req.GroupSize != nil && *req.GroupSize != booking.GroupSize {
			slot, err := uc.slotRepo.GetByIDForUpdate(txCtx, booking.SlotID)
			if err != nil {
				if errors.Is(err, slotRepo.ErrSlotNotFound) {
					uc.logger.Error("UpdateBooking: slot id=%d not found for booking id=%d", booking.SlotID, booking.ID)
					return ErrSlotNotFound
				}
				uc.logger.Error("UpdateBooking: failed to get slot id=%d: %v", booking.SlotID, err)
				return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
			}

			others, err := uc.bookingRepo.SumActiveGroupSize(txCtx, booking.SlotID, &booking.ID)
			if err != nil {
				uc.logger.Error("UpdateBooking: failed to sum active bookings for slot id=%d: %v", booking.SlotID, err)
				return fmt.Errorf("%w: failed to sum active bookings: %v", ErrInternal, err)
			}

			available := slot.Capacity - others
			if *req.GroupSize > available {
				uc.logger.Warn("UpdateBooking: capacity exceeded for slot id=%d: requested=%d, available=%d/%d",
					booking.SlotID, *req.GroupSize, available, slot.Capacity)
				return fmt.Errorf("%w: requested=%d, available=%d", ErrCapacityExceeded, *req.GroupSize, available)
			}

			booking.GroupSize = *req.GroupSize
		}

		// 2.2. Смена статуса - по таблице допустимых переходов
		if targetStatus != nil && *targetStatus != booking.Status {
			if err := uc.applyStatusChange(booking, *targetStatus, req.CancellationReason); err != nil {
				return err
			}
		}

		applyFieldUpdates(booking, req)

		if err := uc.bookingRepo.Update(txCtx, booking); err != nil {
			uc.logger.Error("UpdateBooking: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		// 2.3. Пересчитываем кэш booked_count в этой же транзакции
		if _, err := uc.reconciler.ReconcileBookedCount(txCtx, booking.SlotID); err != nil {
			uc.logger.Error("UpdateBooking: failed to reconcile booked_count for slot id=%d: %v", booking.SlotID, err)
			return fmt.Errorf("%w: failed to reconcile booked_count: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("UpdateBooking: successfully updated booking id=%d", result.ID)

	return &Response{
		ID:                 result.ID,
		SlotID:             result.SlotID,
		VisitorID:          result.VisitorID,
		GroupSize:          result.GroupSize,
		Status:             string(result.Status),
		TotalAmount:        result.TotalAmount,
		PaymentStatus:      string(result.PaymentStatus),
		PaymentMethod:      result.PaymentMethod,
		Notes:              result.Notes,
		SpecialRequests:    result.SpecialRequests,
		CancellationReason: result.CancellationReason,
		ConfirmedAt:        result.ConfirmedAt,
		CancelledAt:        result.CancelledAt,
		CreatedBy:          result.CreatedBy,
		CreatedAt:          result.CreatedAt,
		UpdatedAt:          result.UpdatedAt,
	}, nil
}

// applyStatusChange применяет переход статуса с сопутствующими полями
func (uc *UseCase) applyStatusChange(booking *domain.Booking, target domain.BookingStatus, reason *string) error {
	if !booking.CanTransitionTo(target) {
		uc.logger.Warn("UpdateBooking: invalid transition for booking id=%d: %s -> %s",
			booking.ID, booking.Status, target)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
	}

	now := uc.timeProvider.Now()

	switch target {
	case domain.StatusConfirmed:
		booking.ConfirmedAt = &now
	case domain.StatusCancelled:
		if reason == nil || strings.TrimSpace(*reason) == "" {
			uc.logger.Warn("UpdateBooking: cancellation without reason for booking id=%d", booking.ID)
			return ErrReasonRequired
		}
		booking.CancellationReason = reason
		booking.CancelledAt = &now
	}

	booking.Status = target
	return nil
}

// applyFieldUpdates применяет частичные обновления полей бронирования
func applyFieldUpdates(booking *domain.Booking, req *Request) {
	if req.TotalAmount != nil {
		booking.TotalAmount = *req.TotalAmount
	}
	if req.PaymentStatus != nil {
		// Статус уже прошел валидацию до открытия транзакции
		booking.PaymentStatus = domain.PaymentStatus(*req.PaymentStatus)
	}
	if req.PaymentMethod != nil {
		booking.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != nil {
		booking.Notes = req.Notes
	}
	if req.SpecialRequests != nil {
		booking.SpecialRequests = req.SpecialRequests
	}
}
