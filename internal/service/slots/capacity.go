package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	slotRepo "github.com/m04kA/VMS-VisitService/internal/infra/storage/slot"
	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
)

// Capacity Reconciler: расчёт доступной вместимости и сверка кэша booked_count
// Проверка всегда считает по живым строкам бронирований; кэш booked_count -
// только read-оптимизация для листингов и никогда не источник истины

// ComputeAvailableCapacity возвращает вместимость, занято и доступно для слота
// Занято = сумма group_size активных бронирований (живой агрегат)
func (s *Service) ComputeAvailableCapacity(ctx context.Context, slotID int64) (*domain.SlotAvailability, error) {
	found, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("ComputeAvailableCapacity: slot id=%d not found", slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("ComputeAvailableCapacity: repository error for slot id=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	booked, err := s.bookingRepo.SumActiveGroupSize(ctx, slotID, nil)
	if err != nil {
		s.logger.Error("ComputeAvailableCapacity: failed to sum active bookings for slot id=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: failed to sum active bookings: %v", ErrInternal, err)
	}

	return &domain.SlotAvailability{
		SlotID:    slotID,
		Capacity:  found.Capacity,
		Booked:    booked,
		Available: found.Capacity - booked,
	}, nil
}

// CheckAvailability проверяет, поместится ли группа из groupSize человек в слот
// excludeBookingID исключает собственный вклад бронирования - используется
// при ревалидации изменения group_size существующего бронирования
// Вызывается как снаружи (read path), так и внутри транзакции бронирования:
// репозитории достают executor из контекста, поэтому внутри транзакции
// агрегат читается под блокировкой строки слота
func (s *Service) CheckAvailability(ctx context.Context, slotID int64, groupSize int, excludeBookingID *int64) (*models.AvailabilityResponse, error) {
	if groupSize < domain.MinGroupSize {
		return nil, fmt.Errorf("%w: groupSize must be at least %d", ErrInvalidInput, domain.MinGroupSize)
	}

	availability, err := s.ComputeAvailableCapacity(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if excludeBookingID != nil {
		booked, err := s.bookingRepo.SumActiveGroupSize(ctx, slotID, excludeBookingID)
		if err != nil {
			s.logger.Error("CheckAvailability: failed to sum active bookings for slot id=%d: %v", slotID, err)
			return nil, fmt.Errorf("%w: failed to sum active bookings: %v", ErrInternal, err)
		}
		availability.Booked = booked
		availability.Available = availability.Capacity - booked
	}

	return &models.AvailabilityResponse{
		SlotID:      slotID,
		IsAvailable: groupSize <= availability.Available,
		Capacity:    availability.Capacity,
		Booked:      availability.Booked,
		Available:   availability.Available,
	}, nil
}

// ReconcileBookedCount пересчитывает сумму активных бронирований слота
// и перезаписывает кэш booked_count; идемпотентен - повторный вызов без
// изменений бронирований даёт тот же результат
// Вызывается внутри той же транзакции, что и мутация бронирований
func (s *Service) ReconcileBookedCount(ctx context.Context, slotID int64) (int, error) {
	booked, err := s.bookingRepo.SumActiveGroupSize(ctx, slotID, nil)
	if err != nil {
		s.logger.Error("ReconcileBookedCount: failed to sum active bookings for slot id=%d: %v", slotID, err)
		return 0, fmt.Errorf("%w: failed to sum active bookings: %v", ErrInternal, err)
	}

	if err := s.slotRepo.UpdateBookedCount(ctx, slotID, booked); err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return 0, ErrSlotNotFound
		}
		s.logger.Error("ReconcileBookedCount: failed to update booked_count for slot id=%d: %v", slotID, err)
		return 0, fmt.Errorf("%w: failed to update booked_count: %v", ErrInternal, err)
	}

	s.logger.Info("ReconcileBookedCount: slot id=%d booked_count=%d", slotID, booked)
	return booked, nil
}
