package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
)

// Service сервис жизненного цикла слотов посещений
// Отвечает за создание/изменение/удаление слотов, проверку пересечений,
// расчёт доступной вместимости и административное истечение прошедших слотов
type Service struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create создает новый слот
// Окно слота не должно пересекаться с существующими слотами на эту дату
// (одна площадка - параллельных треков нет); проверка пересечения и вставка
// выполняются в одной транзакции
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("CreateSlot: date=%s, time=%s-%s, capacity=%d, created_by=%d",
		req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime, req.Capacity, req.CreatedBy)

	now := s.timeProvider.Now()

	if err := validateCreateRequest(req, now); err != nil {
		s.logger.Warn("CreateSlot: validation failed: %v", err)
		return nil, err
	}

	duration, err := req.StartTime.MinutesUntil(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time window: %v", ErrInvalidInput, err)
	}

	newSlot := &domain.VisitSlot{
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: duration,
		Capacity:        req.Capacity,
		BookedCount:     0,
		Status:          domain.SlotStatusAvailable,
		Description:     req.Description,
		CreatedBy:       req.CreatedBy,
	}

	var created *domain.VisitSlot

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		existing, err := s.slotRepo.ListByDate(txCtx, req.Date)
		if err != nil {
			s.logger.Error("CreateSlot: failed to list slots for date: %v", err)
			return fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
		}

		if conflict := findOverlap(newSlot, existing, nil); conflict != nil {
			s.logger.Warn("CreateSlot: overlaps with slot id=%d (%s-%s)",
				conflict.ID, conflict.StartTime, conflict.EndTime)
			return fmt.Errorf("%w: slot id=%d occupies %s-%s", ErrSlotConflict,
				conflict.ID, conflict.StartTime, conflict.EndTime)
		}

		created, err = s.slotRepo.Create(txCtx, newSlot)
		if err != nil {
			s.logger.Error("CreateSlot: failed to create slot: %v", err)
			return fmt.Errorf("%w: failed to create slot: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateSlot: successfully created slot id=%d", created.ID)
	return models.FromDomainSlot(created), nil
}

// GetByID получает слот по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.SlotResponse, error) {
	found, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlot(found), nil
}

// Update частично обновляет слот
// Уменьшение вместимости ниже суммы активных бронирований запрещено -
// это зеркальная сторона инварианта bookedCount <= capacity
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("UpdateSlot: updating slot id=%d by user=%d", id, req.UserID)

	if err := validateUpdateRequest(req); err != nil {
		s.logger.Warn("UpdateSlot: validation failed for slot id=%d: %v", id, err)
		return nil, err
	}

	var updated *domain.VisitSlot

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.slotRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				s.logger.Warn("UpdateSlot: slot id=%d not found", id)
				return ErrSlotNotFound
			}
			s.logger.Error("UpdateSlot: repository error for slot id=%d: %v", id, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		if err := applyUpdate(current, req); err != nil {
			s.logger.Warn("UpdateSlot: invalid update for slot id=%d: %v", id, err)
			return err
		}

		// Уменьшение вместимости проверяем по живому агрегату, не по кэшу
		if req.Capacity != nil {
			activeSum, err := s.bookingRepo.SumActiveGroupSize(txCtx, id, nil)
			if err != nil {
				s.logger.Error("UpdateSlot: failed to sum active bookings for slot id=%d: %v", id, err)
				return fmt.Errorf("%w: failed to sum active bookings: %v", ErrInternal, err)
			}
			if *req.Capacity < activeSum {
				s.logger.Warn("UpdateSlot: capacity %d below committed bookings %d for slot id=%d",
					*req.Capacity, activeSum, id)
				return fmt.Errorf("%w: capacity=%d, committed=%d", ErrCapacityBelowBooked,
					*req.Capacity, activeSum)
			}
		}

		// Изменение даты или окна требует повторной проверки пересечений
		if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
			existing, err := s.slotRepo.ListByDate(txCtx, current.Date)
			if err != nil {
				s.logger.Error("UpdateSlot: failed to list slots for date: %v", err)
				return fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
			}
			if conflict := findOverlap(current, existing, &id); conflict != nil {
				s.logger.Warn("UpdateSlot: overlaps with slot id=%d", conflict.ID)
				return fmt.Errorf("%w: slot id=%d occupies %s-%s", ErrSlotConflict,
					conflict.ID, conflict.StartTime, conflict.EndTime)
			}
		}

		if err := s.slotRepo.Update(txCtx, current); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			s.logger.Error("UpdateSlot: failed to update slot id=%d: %v", id, err)
			return fmt.Errorf("%w: failed to update slot: %v", ErrInternal, err)
		}

		updated = current
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateSlot: successfully updated slot id=%d", id)
	return models.FromDomainSlot(updated), nil
}

// Delete удаляет слот
// Отклоняется, пока у слота есть активные бронирования
func (s *Service) Delete(ctx context.Context, id int64, userID int64) error {
	s.logger.Info("DeleteSlot: deleting slot id=%d by user=%d", id, userID)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.slotRepo.GetByIDForUpdate(txCtx, id); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				s.logger.Warn("DeleteSlot: slot id=%d not found", id)
				return ErrSlotNotFound
			}
			s.logger.Error("DeleteSlot: repository error for slot id=%d: %v", id, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		activeCount, err := s.bookingRepo.CountActiveBySlotID(txCtx, id)
		if err != nil {
			s.logger.Error("DeleteSlot: failed to count active bookings for slot id=%d: %v", id, err)
			return fmt.Errorf("%w: failed to count active bookings: %v", ErrInternal, err)
		}
		if activeCount > 0 {
			s.logger.Warn("DeleteSlot: slot id=%d has %d active bookings", id, activeCount)
			return fmt.Errorf("%w: %d active bookings", ErrSlotHasActiveBookings, activeCount)
		}

		if err := s.slotRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			s.logger.Error("DeleteSlot: failed to delete slot id=%d: %v", id, err)
			return fmt.Errorf("%w: failed to delete slot: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("DeleteSlot: successfully deleted slot id=%d", id)
	return nil
}

// GetPublicAvailableSlots возвращает слоты, открытые для бронирования:
// статус available и свободная вместимость, с опциональными границами дат
// Публичный read path для неаутентифицированного поиска
func (s *Service) GetPublicAvailableSlots(ctx context.Context, dateFrom, dateTo *time.Time) (*models.SlotListResponse, error) {
	filter := domain.SlotsFilter{
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		OnlyBookable: true,
	}

	found, err := s.slotRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetPublicAvailableSlots: repository error: %v", err)
		return nil, fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
	}

	s.logger.Info("GetPublicAvailableSlots: found %d bookable slots", len(found))
	return models.FromDomainSlotList(found), nil
}

// ExpirePastUnbookedSlots административный sweep истечения прошедших слотов
// Слоты с датой раньше referenceDate (по умолчанию - сейчас) без активных
// бронирований переводятся в статус expired; ничего не удаляется
func (s *Service) ExpirePastUnbookedSlots(ctx context.Context, req *models.ExpireSlotsRequest) (*models.ExpireSlotsResponse, error) {
	cutoff := s.timeProvider.Now()
	if req != nil && req.ReferenceDate != nil {
		cutoff = *req.ReferenceDate
	}
	cutoff = time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, cutoff.Location())

	s.logger.Info("ExpirePastUnbookedSlots: sweeping slots before %s", cutoff.Format(domain.DateFormat))

	var expired int64

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		count, err := s.slotRepo.ExpirePastUnbooked(txCtx, cutoff)
		if err != nil {
			s.logger.Error("ExpirePastUnbookedSlots: repository error: %v", err)
			return fmt.Errorf("%w: failed to expire slots: %v", ErrInternal, err)
		}
		expired = count
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("ExpirePastUnbookedSlots: expired %d slots before %s", expired, cutoff.Format(domain.DateFormat))
	return &models.ExpireSlotsResponse{
		ExpiredCount: expired,
		CutoffDate:   cutoff.Format(domain.DateFormat),
	}, nil
}
