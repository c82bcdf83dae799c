package reconcile_payment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Verifier проверка подписи вебхука
type Verifier interface {
	Verify(signature string, rawBody []byte) error
}

// PaymentRepository интерфейс репозитория платежных намерений
type PaymentRepository interface {
	GetByProviderRef(ctx context.Context, providerRef string) (*domain.PaymentIntent, error)
	Update(ctx context.Context, intent *domain.PaymentIntent) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// SupplyOrderRepository интерфейс репозитория заказов поставки
type SupplyOrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.SupplyOrder, error)
	UpdateStatus(ctx context.Context, order *domain.SupplyOrder) error
}

// GiftCardActivator активация оплаченной подарочной карты
type GiftCardActivator interface {
	Activate(ctx context.Context, giftCardID int64) error
}

// Lifecycle переходы бронирования по результату оплаты
type Lifecycle interface {
	Confirm(ctx context.Context, booking *domain.Booking, now time.Time, settleBalance bool, payload map[string]interface{}) (*domain.BookingEvent, error)
	ReleaseForPaymentFailure(ctx context.Context, booking *domain.Booking, reason string, now time.Time) (*domain.BookingEvent, error)
	AfterCommit(ctx context.Context, events []*domain.BookingEvent, bookings ...*domain.Booking) []string
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics счетчики обработанных вебхуков
type Metrics interface {
	RecordWebhook(event, outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
