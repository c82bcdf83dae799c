package domain

import "time"

// PaymentSubject tells what a payment intent pays for
type PaymentSubject string

const (
	SubjectBooking     PaymentSubject = "BOOKING"
	SubjectGiftCard    PaymentSubject = "GIFT_CARD"
	SubjectSupplyOrder PaymentSubject = "SUPPLY_ORDER"
)

// PaymentIntentStatus is the status of a payment intent
type PaymentIntentStatus string

const (
	IntentRequiresPaymentMethod PaymentIntentStatus = "REQUIRES_PAYMENT_METHOD"
	IntentProcessing            PaymentIntentStatus = "PROCESSING"
	IntentSucceeded             PaymentIntentStatus = "SUCCEEDED"
	IntentFailed                PaymentIntentStatus = "FAILED"
	IntentCancelled             PaymentIntentStatus = "CANCELLED"
)

// PaymentIntent tracks one external payment attempt for exactly one subject
type PaymentIntent struct {
	ID            int64
	Subject       PaymentSubject
	BookingID     *int64
	GiftCardID    *int64
	SupplyOrderID *int64
	Provider      string
	ProviderRef   string
	Amount        int64
	Currency      string
	Status        PaymentIntentStatus
	LastError     *string
	Metadata      map[string]interface{}
	ConfirmedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsSucceeded returns true once the intent has been paid
func (p *PaymentIntent) IsSucceeded() bool {
	return p.Status == IntentSucceeded
}

// SupplyOrderStatus is the status of a supply order paid through the platform
type SupplyOrderStatus string

const (
	SupplyOrderRequiresPayment   SupplyOrderStatus = "REQUIRES_PAYMENT"
	SupplyOrderWaitingOnSupplier SupplyOrderStatus = "WAITING_ON_SUPPLIER"
	SupplyOrderCancelled         SupplyOrderStatus = "CANCELLED"
)

// SupplyOrder is the part of a supply order the payment flow touches
type SupplyOrder struct {
	ID        int64
	VendorID  int64
	Status    SupplyOrderStatus
	UpdatedAt time.Time
}
