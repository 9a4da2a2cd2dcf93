package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/VMS-VisitService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	if req.VisitorID <= 0 {
		return fmt.Errorf("%w: visitorID must be positive", ErrInvalidInput)
	}

	if req.CreatedBy <= 0 {
		return fmt.Errorf("%w: createdBy must be positive", ErrInvalidInput)
	}

	if req.GroupSize < domain.MinGroupSize || req.GroupSize > domain.MaxGroupSize {
		return fmt.Errorf("%w: groupSize must be between %d and %d",
			ErrInvalidInput, domain.MinGroupSize, domain.MaxGroupSize)
	}

	if req.TotalAmount != nil && *req.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount must be non-negative", ErrInvalidInput)
	}

	if req.PaymentMethod != nil && strings.TrimSpace(*req.PaymentMethod) == "" {
		return fmt.Errorf("%w: paymentMethod must not be blank", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: specialRequests exceed %d characters", ErrInvalidInput, domain.MaxSpecialRequestsLength)
	}

	return nil
}

// paymentStatusOrDefault возвращает статус оплаты из запроса или pending
func paymentStatusOrDefault(req *Request) (domain.PaymentStatus, error) {
	if req.PaymentStatus == nil {
		return domain.PaymentPending, nil
	}

	status := domain.PaymentStatus(*req.PaymentStatus)
	switch status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed,
		domain.PaymentRefunded, domain.PaymentPartial:
		return status, nil
	default:
		return "", fmt.Errorf("%w: invalid paymentStatus %q", ErrInvalidInput, *req.PaymentStatus)
	}
}
