package create_booking

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
)

var errMissingStart = errors.New("startAt is required")

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID     int64   `json:"serviceId"`
	StartAt       string  `json:"startAt"` // RFC3339, "2026-03-09T09:00:00Z"
	SeatID        *int64  `json:"seatId,omitempty"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail *string `json:"customerEmail,omitempty"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	GiftCardCode  *string `json:"giftCardCode,omitempty"`

	// CollectDeposit только для ручного бронирования вендором
	CollectDeposit bool `json:"collectDeposit,omitempty"`
}

// PaymentIntentResponse платежное намерение по депозиту
type PaymentIntentResponse struct {
	ID          int64  `json:"id"`
	Provider    string `json:"provider"`
	ProviderRef string `json:"providerRef"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// GiftCardResponse применение подарочной карты
type GiftCardResponse struct {
	GiftCardID     int64 `json:"giftCardId"`
	AppliedDeposit int64 `json:"appliedDeposit"`
	AppliedBalance int64 `json:"appliedBalance"`
	CardBalance    int64 `json:"cardBalance"`
}

// CheckoutResponse данные для оплаты депозита на клиенте
type CheckoutResponse struct {
	Provider         string                 `json:"provider"`
	PublicKey        string                 `json:"publicKey,omitempty"`
	Reference        string                 `json:"reference"`
	Amount           int64                  `json:"amount"`
	Currency         string                 `json:"currency"`
	Email            *string                `json:"email,omitempty"`
	Channels         []string               `json:"channels,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	AuthorizationURL *string                `json:"authorizationUrl,omitempty"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	Booking       *models.BookingResponse `json:"booking"`
	PaymentIntent *PaymentIntentResponse  `json:"paymentIntent,omitempty"`
	GiftCard      *GiftCardResponse       `json:"giftCard,omitempty"`
	Checkout      *CheckoutResponse       `json:"checkout,omitempty"`
	Warnings      []string                `json:"warnings,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(source domain.BookingSource, vendorID int64, identity *domain.Identity) (*createBooking.Request, error) {
	if r.StartAt == "" {
		return nil, errMissingStart
	}
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		Identity:       identity,
		Source:         source,
		VendorID:       vendorID,
		ServiceID:      r.ServiceID,
		StartAt:        startAt.UTC(),
		SeatID:         r.SeatID,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		CustomerPhone:  r.CustomerPhone,
		Notes:          r.Notes,
		GiftCardCode:   r.GiftCardCode,
		CollectDeposit: r.CollectDeposit,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	out := &CreateBookingResponse{
		Booking:  models.FromDomainBooking(resp.Booking),
		Warnings: resp.Warnings,
	}

	if p := resp.PaymentIntent; p != nil {
		out.PaymentIntent = &PaymentIntentResponse{
			ID:          p.ID,
			Provider:    p.Provider,
			ProviderRef: p.ProviderRef,
			Amount:      p.Amount,
			Currency:    p.Currency,
			Status:      string(p.Status),
		}
	}

	if g := resp.GiftCard; g != nil {
		out.GiftCard = &GiftCardResponse{
			GiftCardID:     g.GiftCardID,
			AppliedDeposit: g.AppliedDeposit,
			AppliedBalance: g.AppliedBalance,
			CardBalance:    g.CardBalance,
		}
	}

	if c := resp.Checkout; c != nil {
		out.Checkout = &CheckoutResponse{
			Provider:         c.Provider,
			PublicKey:        c.PublicKey,
			Reference:        c.Reference,
			Amount:           c.Amount,
			Currency:         c.Currency,
			Email:            c.Email,
			Channels:         c.Channels,
			Metadata:         c.Metadata,
			AuthorizationURL: c.AuthorizationURL,
		}
	}

	return out
}
