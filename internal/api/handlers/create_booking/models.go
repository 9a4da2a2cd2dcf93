package create_booking

import (
	"time"

	createBooking "github.com/m04kA/VMS-VisitService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SlotID          int64    `json:"slotId"`
	VisitorID       int64    `json:"visitorId"`
	GroupSize       int      `json:"groupSize"`
	TotalAmount     *float64 `json:"totalAmount,omitempty"`
	PaymentMethod   *string  `json:"paymentMethod,omitempty"`
	PaymentStatus   *string  `json:"paymentStatus,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	SpecialRequests *string  `json:"specialRequests,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	SlotID          int64   `json:"slotId"`
	VisitorID       int64   `json:"visitorId"`
	GroupSize       int     `json:"groupSize"`
	Status          string  `json:"status"`
	TotalAmount     float64 `json:"totalAmount"`
	PaymentStatus   string  `json:"paymentStatus"`
	PaymentMethod   *string `json:"paymentMethod,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
	CreatedBy       int64   `json:"createdBy"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *createBooking.Request {
	return &createBooking.Request{
		SlotID:          r.SlotID,
		VisitorID:       r.VisitorID,
		GroupSize:       r.GroupSize,
		TotalAmount:     r.TotalAmount,
		PaymentMethod:   r.PaymentMethod,
		PaymentStatus:   r.PaymentStatus,
		Notes:           r.Notes,
		SpecialRequests: r.SpecialRequests,
		CreatedBy:       userID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		SlotID:          resp.SlotID,
		VisitorID:       resp.VisitorID,
		GroupSize:       resp.GroupSize,
		Status:          resp.Status,
		TotalAmount:     resp.TotalAmount,
		PaymentStatus:   resp.PaymentStatus,
		PaymentMethod:   resp.PaymentMethod,
		Notes:           resp.Notes,
		SpecialRequests: resp.SpecialRequests,
		CreatedBy:       resp.CreatedBy,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
