package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending         BookingStatus = "PENDING"
	StatusAwaitingPayment BookingStatus = "AWAITING_PAYMENT"
	StatusConfirmed       BookingStatus = "CONFIRMED"
	StatusCompleted       BookingStatus = "COMPLETED"
	StatusCancelled       BookingStatus = "CANCELLED"
	StatusNoShow          BookingStatus = "NO_SHOW"
)

// IsValid returns true for known statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAwaitingPayment, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsActive returns true if the status occupies capacity
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusAwaitingPayment || s == StatusConfirmed
}

// transitions lists the allowed next statuses for each status
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:         {StatusAwaitingPayment, StatusConfirmed, StatusCancelled},
	StatusAwaitingPayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusCompleted, StatusNoShow, StatusCancelled},
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BookingSource shows who created the booking
type BookingSource string

const (
	SourceOnline BookingSource = "ONLINE"
	SourceManual BookingSource = "MANUAL"
)

// CancellationActor records who cancelled a booking
type CancellationActor string

const (
	ActorVendor   CancellationActor = "VENDOR"
	ActorCustomer CancellationActor = "CUSTOMER"
	ActorSystem   CancellationActor = "SYSTEM"
)

// Booking represents a reservation of a vendor service for a time range
type Booking struct {
	ID        int64
	Reference string
	VendorID  int64
	ServiceID int64

	// Customer identity is optional: guests and manual bookings may have none
	CustomerUserID *int64

	// Contact snapshot captured at creation
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string

	ScheduledStart time.Time
	ScheduledEnd   time.Time

	SeatID  *int64
	StaffID *int64

	// Amounts in minor currency units
	// Deposit + Balance + GiftCardApplied + BalanceSettled = Price
	Price           int64
	Deposit         int64
	Balance         int64
	GiftCardApplied int64
	BalanceSettled  int64
	Currency        string

	Status BookingStatus
	Source BookingSource
	Notes  *string

	RescheduleCount    int
	CancelledBy        *CancellationActor
	CancellationReason *string

	RescheduledAt  *time.Time
	CancelledAt    *time.Time
	CompletedAt    *time.Time
	PaidAt         *time.Time
	ReminderSentAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive returns true if the booking occupies capacity
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanBeRescheduled returns true if the status allows moving the booking
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusConfirmed || b.Status == StatusAwaitingPayment
}

// CanBeCancelled returns true if the booking may still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status.IsActive()
}

// IsAwaitingPayment returns true while a deposit is outstanding
func (b *Booking) IsAwaitingPayment() bool {
	return b.Status == StatusPending || b.Status == StatusAwaitingPayment
}

// HasCustomer returns true if a customer account is attached
func (b *Booking) HasCustomer() bool {
	return b.CustomerUserID != nil
}

// Overlaps reports whether the booking intersects [start, end)
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.ScheduledStart.Before(end) && b.ScheduledEnd.After(start)
}

// VendorBookingsFilter filters vendor booking listings
type VendorBookingsFilter struct {
	VendorID int64
	Statuses []BookingStatus // empty = any status
	From     *time.Time      // scheduled_start >= From
	To       *time.Time      // scheduled_start < To
	Take     int
	Skip     int
}

// OverlapQuery describes an overlap lookup against active bookings
type OverlapQuery struct {
	VendorID         int64
	Start            time.Time
	End              time.Time
	ExcludeBookingID *int64
}

// VendorStats aggregates a vendor's booking counters
type VendorStats struct {
	VendorID       int64
	CountsByStatus map[BookingStatus]int
	Total          int
	CompletedSales int64
}

// AmountsConsistent checks that the price is fully accounted for by the due, gift card and settled amounts
func (b *Booking) AmountsConsistent() bool {
	return b.Deposit >= 0 && b.Balance >= 0 && b.GiftCardApplied >= 0 && b.BalanceSettled >= 0 &&
		b.Deposit+b.Balance+b.GiftCardApplied+b.BalanceSettled == b.Price
}

// SettleBalance marks the outstanding balance as paid outside the provider
func (b *Booking) SettleBalance() {
	b.BalanceSettled += b.Balance
	b.Balance = 0
}
