package models

import (
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64
	CancellationReason string
}

// ConfirmBookingRequest запрос на подтверждение бронирования
type ConfirmBookingRequest struct {
	UserID int64
	// ConfirmedAt метка подтверждения; nil - текущее время
	ConfirmedAt *time.Time
}

// ListBookingsRequest запрос на получение списка бронирований
type ListBookingsRequest struct {
	SlotID        *int64
	VisitorID     *int64
	Status        *string
	PaymentStatus *string
	PaymentMethod *string
	CreatedBy     *int64
	DateFrom      *time.Time
	DateTo        *time.Time
	GroupSizeMin  *int
	GroupSizeMax  *int
	AmountMin     *float64
	AmountMax     *float64

	Page  int
	Limit int
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		SlotID:        r.SlotID,
		VisitorID:     r.VisitorID,
		PaymentMethod: r.PaymentMethod,
		CreatedBy:     r.CreatedBy,
		DateFrom:      r.DateFrom,
		DateTo:        r.DateTo,
		GroupSizeMin:  r.GroupSizeMin,
		GroupSizeMax:  r.GroupSizeMax,
		AmountMin:     r.AmountMin,
		AmountMax:     r.AmountMax,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if r.PaymentStatus != nil {
		status, err := ToDomainPaymentStatus(*r.PaymentStatus)
		if err != nil {
			return filter, err
		}
		filter.PaymentStatus = &status
	}

	return filter, nil
}

// Pagination возвращает параметры пагинации запроса
func (r *ListBookingsRequest) Pagination() domain.Pagination {
	return domain.Pagination{Page: r.Page, Limit: r.Limit}.Normalize()
}

// StatsRequest запрос статистики бронирований
type StatsRequest struct {
	// WindowDays trailing-окно в днях; 0 - значение по умолчанию
	WindowDays int
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        int64  `json:"id"`
	SlotID    int64  `json:"slotId"`
	VisitorID int64  `json:"visitorId"`
	GroupSize int    `json:"groupSize"`
	Status    string `json:"status"`

	TotalAmount   float64 `json:"totalAmount"`
	PaymentStatus string  `json:"paymentStatus"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`

	Notes           *string `json:"notes,omitempty"`
	SpecialRequests *string `json:"specialRequests,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	ConfirmedAt        *string `json:"confirmedAt,omitempty"` // ISO 8601
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований и общим количеством
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int64             `json:"total"`
}

// StatsResponse ответ со статистикой бронирований
type StatsResponse struct {
	TotalBookings     int64                `json:"totalBookings"`
	ByStatus          map[string]int64     `json:"byStatus"`
	ByPaymentStatus   map[string]int64     `json:"byPaymentStatus"`
	TotalRevenue      float64              `json:"totalRevenue"`
	AverageGroupSize  float64              `json:"averageGroupSize"`
	Daily             []DailyStatsResponse `json:"daily"`
	TopPaymentMethods []PaymentMethodStats `json:"topPaymentMethods"`
}

// DailyStatsResponse статистика за один день
type DailyStatsResponse struct {
	Date     string  `json:"date"` // "2026-08-01"
	Bookings int64   `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// PaymentMethodStats количество бронирований по способу оплаты
type PaymentMethodStats struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		SlotID:          b.SlotID,
		VisitorID:       b.VisitorID,
		GroupSize:       b.GroupSize,
		Status:          string(b.Status),
		TotalAmount:     b.TotalAmount,
		PaymentStatus:   string(b.PaymentStatus),
		PaymentMethod:   b.PaymentMethod,
		Notes:           b.Notes,
		SpecialRequests: b.SpecialRequests,
		CancellationReason: b.CancellationReason,
		CreatedBy:       b.CreatedBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.ConfirmedAt != nil {
		confirmedStr := b.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &confirmedStr
	}
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, total int64) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Total:    total,
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainStats конвертирует статистику в DTO
func FromDomainStats(stats *domain.BookingStats) *StatsResponse {
	resp := &StatsResponse{
		TotalBookings:     stats.TotalBookings,
		ByStatus:          make(map[string]int64, len(stats.ByStatus)),
		ByPaymentStatus:   make(map[string]int64, len(stats.ByPaymentStatus)),
		TotalRevenue:      stats.TotalRevenue,
		AverageGroupSize:  stats.AverageGroupSize,
		Daily:             make([]DailyStatsResponse, 0, len(stats.Daily)),
		TopPaymentMethods: make([]PaymentMethodStats, 0, len(stats.TopPaymentMethods)),
	}

	for status, count := range stats.ByStatus {
		resp.ByStatus[string(status)] = count
	}
	for status, count := range stats.ByPaymentStatus {
		resp.ByPaymentStatus[string(status)] = count
	}
	for _, day := range stats.Daily {
		resp.Daily = append(resp.Daily, DailyStatsResponse{
			Date:     day.Date.Format(domain.DateFormat),
			Bookings: day.Bookings,
			Revenue:  day.Revenue,
		})
	}
	for _, pm := range stats.TopPaymentMethods {
		resp.TopPaymentMethods = append(resp.TopPaymentMethods, PaymentMethodStats{
			Method: pm.Method,
			Count:  pm.Count,
		})
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusTentative,
		domain.StatusConfirmed,
		domain.StatusCancelled,
		domain.StatusCompleted,
		domain.StatusNoShow,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}

// ToDomainPaymentStatus конвертирует строку в domain.PaymentStatus с валидацией
func ToDomainPaymentStatus(status string) (domain.PaymentStatus, error) {
	s := domain.PaymentStatus(status)

	validStatuses := []domain.PaymentStatus{
		domain.PaymentPending,
		domain.PaymentPaid,
		domain.PaymentFailed,
		domain.PaymentRefunded,
		domain.PaymentPartial,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
