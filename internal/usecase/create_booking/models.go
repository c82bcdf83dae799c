package create_booking

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	Identity *domain.Identity     // nil для гостевого онлайн-бронирования
	Source   domain.BookingSource // ONLINE или MANUAL
	VendorID int64                // для MANUAL: вендор из пути запроса

	ServiceID     int64
	StartAt       time.Time
	SeatID        *int64
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	Notes         *string
	GiftCardCode  *string

	// CollectDeposit учитывается только для MANUAL, онлайн-бронирование всегда берет депозит
	CollectDeposit bool
}

// Checkout данные для оплаты депозита
type Checkout struct {
	Provider         string
	PublicKey        string
	Reference        string
	Amount           int64
	Currency         string
	Email            *string
	Channels         []string
	Metadata         map[string]interface{}
	AuthorizationURL *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking       *domain.Booking
	PaymentIntent *domain.PaymentIntent
	GiftCard      *domain.GiftCardApplication
	Checkout      *Checkout

	// Warnings ошибки побочных эффектов (календарь), бронирование при этом создано
	Warnings []string
}
