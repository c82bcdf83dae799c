package domain

import "time"

// GiftCardStatus is the status of a gift card
type GiftCardStatus string

const (
	GiftCardPendingPayment GiftCardStatus = "PENDING_PAYMENT"
	GiftCardActive         GiftCardStatus = "ACTIVE"
	GiftCardDepleted       GiftCardStatus = "DEPLETED"
	GiftCardExpired        GiftCardStatus = "EXPIRED"
	GiftCardCancelled      GiftCardStatus = "CANCELLED"
)

// GiftCard is a prepaid balance redeemable at one vendor
type GiftCard struct {
	ID        int64
	VendorID  int64
	Code      string
	Currency  string
	Balance   int64
	Status    GiftCardStatus
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// GiftCardRedemption records a balance applied to a booking
type GiftCardRedemption struct {
	ID         int64
	GiftCardID int64
	BookingID  int64
	Amount     int64
	RefundedAt *time.Time
	CreatedAt  time.Time
}

// GiftCardApplication is the outcome of applying a card to a booking's amounts
type GiftCardApplication struct {
	GiftCardID       int64
	AppliedDeposit   int64
	AppliedBalance   int64
	RemainingDeposit int64
	RemainingBalance int64
	CardBalance      int64
}

// TotalApplied returns the amount taken from the card
func (a *GiftCardApplication) TotalApplied() int64 {
	return a.AppliedDeposit + a.AppliedBalance
}
