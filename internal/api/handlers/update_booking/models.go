package update_booking

import (
	"time"

	updateBooking "github.com/m04kA/VMS-VisitService/internal/usecase/update_booking"
)

// UpdateBookingRequest HTTP request model
// nil-поля не изменяются
type UpdateBookingRequest struct {
	GroupSize          *int     `json:"groupSize,omitempty"`
	Status             *string  `json:"status,omitempty"`
	TotalAmount        *float64 `json:"totalAmount,omitempty"`
	PaymentStatus      *string  `json:"paymentStatus,omitempty"`
	PaymentMethod      *string  `json:"paymentMethod,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
	SpecialRequests    *string  `json:"specialRequests,omitempty"`
	CancellationReason *string  `json:"cancellationReason,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                 int64   `json:"id"`
	SlotID             int64   `json:"slotId"`
	VisitorID          int64   `json:"visitorId"`
	GroupSize          int     `json:"groupSize"`
	Status             string  `json:"status"`
	TotalAmount        float64 `json:"totalAmount"`
	PaymentStatus      string  `json:"paymentStatus"`
	PaymentMethod      *string `json:"paymentMethod,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	SpecialRequests    *string `json:"specialRequests,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	ConfirmedAt        *string `json:"confirmedAt,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`
	CreatedBy          int64   `json:"createdBy"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateBookingRequest) ToUseCaseRequest(bookingID, userID int64) *updateBooking.Request {
	return &updateBooking.Request{
		BookingID:          bookingID,
		GroupSize:          r.GroupSize,
		Status:             r.Status,
		TotalAmount:        r.TotalAmount,
		PaymentStatus:      r.PaymentStatus,
		PaymentMethod:      r.PaymentMethod,
		Notes:              r.Notes,
		SpecialRequests:    r.SpecialRequests,
		CancellationReason: r.CancellationReason,
		UserID:             userID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                 resp.ID,
		SlotID:             resp.SlotID,
		VisitorID:          resp.VisitorID,
		GroupSize:          resp.GroupSize,
		Status:             resp.Status,
		TotalAmount:        resp.TotalAmount,
		PaymentStatus:      resp.PaymentStatus,
		PaymentMethod:      resp.PaymentMethod,
		Notes:              resp.Notes,
		SpecialRequests:    resp.SpecialRequests,
		CancellationReason: resp.CancellationReason,
		ConfirmedAt:        formatTimePtr(resp.ConfirmedAt),
		CancelledAt:        formatTimePtr(resp.CancelledAt),
		CreatedBy:          resp.CreatedBy,
		CreatedAt:          resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          resp.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
