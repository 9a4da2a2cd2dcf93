package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	bookingRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/booking"
	"github.com/m04kA/VMS-VisitService/internal/integrations/notifyservice"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований
// Создание и изменение group_size живут в отдельных usecases (им нужна
// сериализация проверки вместимости); здесь - чтение, подтверждение,
// отмена, удаление и статистика
type Service struct {
	bookingRepo  BookingRepository
	reconciler   CapacityReconciler
	txManager    TransactionManager
	notifier     Notifier
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	reconciler CapacityReconciler,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		reconciler:   reconciler,
		txManager:    txManager,
		notifier:     notifier,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// List получает бронирования с фильтрацией и пагинацией
// Возвращает страницу и общее количество под фильтром
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter: %v", ErrInvalidInput, err)
	}

	found, total, err := s.bookingRepo.List(ctx, filter, req.Pagination())
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d of %d bookings", len(found), total)
	return models.FromDomainBookingList(found, total), nil
}

// GetByVisitorID получает бронирования посетителя
func (s *Service) GetByVisitorID(ctx context.Context, visitorID int64, page domain.Pagination) (*models.BookingListResponse, error) {
	return s.List(ctx, &models.ListBookingsRequest{
		VisitorID: &visitorID,
		Page:      page.Page,
		Limit:     page.Limit,
	})
}

// GetBySlotID получает бронирования слота в порядке очереди
func (s *Service) GetBySlotID(ctx context.Context, slotID int64, page domain.Pagination) (*models.BookingListResponse, error) {
	return s.List(ctx, &models.ListBookingsRequest{
		SlotID: &slotID,
		Page:   page.Page,
		Limit:  page.Limit,
	})
}

// Confirm подтверждает бронирование (tentative -> confirmed)
// Вместимость повторно не проверяется: она зарезервирована при создании
// и активное бронирование свой вклад уже удерживает
func (s *Service) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%d by user=%d", bookingID, req.UserID)

	confirmedAt := s.timeProvider.Now()
	if req.ConfirmedAt != nil {
		confirmedAt = *req.ConfirmedAt
	}

	var confirmed *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Confirm: booking id=%d not found", bookingID)
				return ErrBookingNotFound
			}
			s.logger.Error("Confirm: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
		}

		if !booking.CanBeConfirmed() {
			s.logger.Warn("Confirm: booking id=%d cannot be confirmed, status=%s", bookingID, booking.Status)
			return fmt.Errorf("%w: cannot confirm booking in status %q", ErrInvalidTransition, booking.Status)
		}

		if err := s.bookingRepo.Confirm(txCtx, bookingID, confirmedAt); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Confirm: failed to confirm booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
		}

		// tentative и confirmed оба активны, но пересчёт дёшев и защищает
		// кэш от дрейфа после ручных правок данных
		if _, err := s.reconciler.ReconcileBookedCount(txCtx, booking.SlotID); err != nil {
			return err
		}

		booking.Status = domain.StatusConfirmed
		booking.ConfirmedAt = &confirmedAt
		confirmed = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.notify(ctx, bookingID, notifyservice.EventBookingConfirmed)

	s.logger.Info("Confirm: successfully confirmed booking id=%d", bookingID)
	return models.FromDomainBooking(confirmed), nil
}

// Cancel отменяет бронирование с обязательной причиной
// Отмена освобождает вместимость слота - booked_count пересчитывается
// в той же транзакции
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if strings.TrimSpace(req.CancellationReason) == "" {
		s.logger.Warn("Cancel: missing cancellation reason for booking id=%d", bookingID)
		return nil, ErrReasonRequired
	}
	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	cancelledAt := s.timeProvider.Now()

	var cancelled *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Cancel: booking id=%d not found", bookingID)
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return fmt.Errorf("%w: cannot cancel booking in status %q", ErrInvalidTransition, booking.Status)
		}

		if err := s.bookingRepo.Cancel(txCtx, bookingID, req.CancellationReason, cancelledAt); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: failed to cancel booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if _, err := s.reconciler.ReconcileBookedCount(txCtx, booking.SlotID); err != nil {
			return err
		}

		booking.Status = domain.StatusCancelled
		booking.CancellationReason = &req.CancellationReason
		booking.CancelledAt = &cancelledAt
		cancelled = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.notify(ctx, bookingID, notifyservice.EventBookingCancelled)

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return models.FromDomainBooking(cancelled), nil
}

// Delete физически удаляет бронирование (административная операция)
// В отличие от Cancel история не сохраняется; вместимость слота
// пересчитывается в той же транзакции
func (s *Service) Delete(ctx context.Context, bookingID int64, userID int64) error {
	s.logger.Info("Delete: deleting booking id=%d by user=%d", bookingID, userID)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Delete: booking id=%d not found", bookingID)
				return ErrBookingNotFound
			}
			s.logger.Error("Delete: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.Delete(txCtx, bookingID); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Delete: failed to delete booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}

		if _, err := s.reconciler.ReconcileBookedCount(txCtx, booking.SlotID); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("Delete: successfully deleted booking id=%d", bookingID)
	return nil
}

// GetStats собирает агрегированную статистику бронирований
func (s *Service) GetStats(ctx context.Context, req *models.StatsRequest) (*models.StatsResponse, error) {
	windowDays := domain.DefaultStatsWindowDays
	if req != nil && req.WindowDays > 0 {
		windowDays = req.WindowDays
	}

	s.logger.Info("GetStats: collecting stats for trailing %d days", windowDays)

	stats, err := s.bookingRepo.GetStats(ctx, windowDays, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("GetStats: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetStats - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainStats(stats), nil
}

// notify отправляет сигнал о событии бронирования после коммита
// Ошибки уведомлений не влияют на результат операции - только логируются
func (s *Service) notify(ctx context.Context, bookingID int64, eventType notifyservice.EventType) {
	if err := s.notifier.NotifyBookingEvent(ctx, bookingID, eventType); err != nil {
		s.logger.Error("notify: failed to dispatch event=%s for booking id=%d: %v", eventType, bookingID, err)
	}
}
