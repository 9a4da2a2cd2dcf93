package update_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/VMS-VisitService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.GroupSize != nil && (*req.GroupSize < domain.MinGroupSize || *req.GroupSize > domain.MaxGroupSize) {
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

	if req.CancellationReason != nil && len(*req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellationReason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}

// parseBookingStatus разбирает статус бронирования из запроса
func parseBookingStatus(raw string) (domain.BookingStatus, error) {
	status := domain.BookingStatus(raw)
	switch status {
	case domain.StatusTentative, domain.StatusConfirmed, domain.StatusCancelled,
		domain.StatusCompleted, domain.StatusNoShow:
		return status, nil
	default:
		return "", fmt.Errorf("%w: invalid status %q", ErrInvalidInput, raw)
	}
}

// parsePaymentStatus разбирает статус оплаты из запроса
func parsePaymentStatus(raw string) (domain.PaymentStatus, error) {
	status := domain.PaymentStatus(raw)
	switch status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed,
		domain.PaymentRefunded, domain.PaymentPartial:
		return status, nil
	default:
		return "", fmt.Errorf("%w: invalid paymentStatus %q", ErrInvalidInput, raw)
	}
}
