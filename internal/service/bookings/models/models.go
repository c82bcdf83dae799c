package models

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Identity  domain.Identity `json:"-"`
	BookingID int64           `json:"-"`
	Reason    *string         `json:"reason,omitempty"`
}

// VendorBookingsRequest запрос на получение бронирований вендора
type VendorBookingsRequest struct {
	Identity domain.Identity
	VendorID int64
	Statuses []string
	From     *time.Time
	To       *time.Time
	Take     int
	Skip     int
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *VendorBookingsRequest) ToDomainFilter() (domain.VendorBookingsFilter, error) {
	filter := domain.VendorBookingsFilter{
		VendorID: r.VendorID,
		From:     r.From,
		To:       r.To,
		Take:     r.Take,
		Skip:     r.Skip,
	}

	for _, s := range r.Statuses {
		status := domain.BookingStatus(s)
		if !status.IsValid() {
			return filter, ErrInvalidStatus
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	return filter, nil
}

// ClaimBookingsRequest запрос на привязку гостевых бронирований к аккаунту
type ClaimBookingsRequest struct {
	Identity domain.Identity `json:"-"`
	Email    *string         `json:"email,omitempty"`
	Phone    *string         `json:"phone,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64   `json:"id"`
	Reference      string  `json:"reference"`
	VendorID       int64   `json:"vendorId"`
	ServiceID      int64   `json:"serviceId"`
	CustomerUserID *int64  `json:"customerUserId,omitempty"`
	CustomerName   string  `json:"customerName"`
	CustomerEmail  *string `json:"customerEmail,omitempty"`
	CustomerPhone  *string `json:"customerPhone,omitempty"`

	ScheduledStart time.Time `json:"scheduledStart"`
	ScheduledEnd   time.Time `json:"scheduledEnd"`
	SeatID         *int64    `json:"seatId,omitempty"`
	StaffID        *int64    `json:"staffId,omitempty"`

	Price           int64  `json:"price"`
	Deposit         int64  `json:"deposit"`
	Balance         int64  `json:"balance"`
	GiftCardApplied int64  `json:"giftCardApplied"`
	BalanceSettled  int64  `json:"balanceSettled"`
	Currency        string `json:"currency"`

	Status             string  `json:"status"`
	Source             string  `json:"source"`
	Notes              *string `json:"notes,omitempty"`
	RescheduleCount    int     `json:"rescheduleCount"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`

	RescheduledAt  *time.Time `json:"rescheduledAt,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	ReminderSentAt *time.Time `json:"reminderSentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Warnings ошибки побочных эффектов (календарь), переход при этом сохранен
	Warnings []string `json:"warnings,omitempty"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Warnings []string          `json:"warnings,omitempty"`
}

// VendorStatsResponse статистика бронирований вендора
type VendorStatsResponse struct {
	VendorID       int64          `json:"vendorId"`
	Counts         map[string]int `json:"counts"`
	Total          int            `json:"total"`
	CompletedSales int64          `json:"completedSales"`
}

// CalendarEntryResponse запись календаря
type CalendarEntryResponse struct {
	BookingID int64     `json:"bookingId"`
	OwnerType string    `json:"ownerType"`
	OwnerID   int64     `json:"ownerId"`
	VendorID  int64     `json:"vendorId"`
	ServiceID int64     `json:"serviceId"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Status    string    `json:"status"`
}

// CalendarResponse ответ со списком записей календаря
type CalendarResponse struct {
	Entries []CalendarEntryResponse `json:"entries"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		Reference:          b.Reference,
		VendorID:           b.VendorID,
		ServiceID:          b.ServiceID,
		CustomerUserID:     b.CustomerUserID,
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		CustomerPhone:      b.CustomerPhone,
		ScheduledStart:     b.ScheduledStart.UTC(),
		ScheduledEnd:       b.ScheduledEnd.UTC(),
		SeatID:             b.SeatID,
		StaffID:            b.StaffID,
		Price:              b.Price,
		Deposit:            b.Deposit,
		Balance:            b.Balance,
		GiftCardApplied:    b.GiftCardApplied,
		BalanceSettled:     b.BalanceSettled,
		Currency:           b.Currency,
		Status:             string(b.Status),
		Source:             string(b.Source),
		Notes:              b.Notes,
		RescheduleCount:    b.RescheduleCount,
		CancellationReason: b.CancellationReason,
		RescheduledAt:      b.RescheduledAt,
		CancelledAt:        b.CancelledAt,
		CompletedAt:        b.CompletedAt,
		PaidAt:             b.PaidAt,
		ReminderSentAt:     b.ReminderSentAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		actor := string(*b.CancelledBy)
		resp.CancelledBy = &actor
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// FromDomainStats конвертирует статистику
func FromDomainStats(s *domain.VendorStats) *VendorStatsResponse {
	resp := &VendorStatsResponse{
		VendorID:       s.VendorID,
		Counts:         make(map[string]int, 6),
		Total:          s.Total,
		CompletedSales: s.CompletedSales,
	}
	// Все статусы присутствуют в ответе, даже с нулем
	for _, status := range append(append([]domain.BookingStatus{}, domain.ActiveStatuses...), domain.InactiveStatuses...) {
		resp.Counts[string(status)] = s.CountsByStatus[status]
	}
	return resp
}

// FromDomainCalendar конвертирует записи календаря
func FromDomainCalendar(entries []*domain.CalendarEntry) *CalendarResponse {
	resp := &CalendarResponse{Entries: make([]CalendarEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, CalendarEntryResponse{
			BookingID: e.BookingID,
			OwnerType: string(e.OwnerType),
			OwnerID:   e.OwnerID,
			VendorID:  e.VendorID,
			ServiceID: e.ServiceID,
			StartsAt:  e.StartsAt.UTC(),
			EndsAt:    e.EndsAt.UTC(),
			Status:    string(e.Status),
		})
	}
	return resp
}
