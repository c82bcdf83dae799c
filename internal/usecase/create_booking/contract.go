package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/allocator"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/giftcards"
)

// CatalogRepository интерфейс чтения услуг и вендоров
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetVendorByID(ctx context.Context, id int64) (*domain.Vendor, error)
}

// SlotSource генератор слотов услуги на сутки
type SlotSource interface {
	SlotsForDay(ctx context.Context, service *domain.Service, day time.Time) ([]domain.Slot, error)
}

// Allocator выбор места и проверка пересечений внутри транзакции
type Allocator interface {
	Allocate(ctx context.Context, req allocator.Request) (*allocator.Allocation, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// PaymentRepository интерфейс репозитория платежных намерений
type PaymentRepository interface {
	Create(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentIntent, error)
}

// GiftCards применение баланса подарочной карты
type GiftCards interface {
	Apply(ctx context.Context, req giftcards.ApplyRequest) (*domain.GiftCardApplication, error)
	Redeem(ctx context.Context, application *domain.GiftCardApplication, bookingID int64) error
	SettleRejected(ctx context.Context, code string) error
}

// Lifecycle события бронирования и побочные эффекты после коммита
type Lifecycle interface {
	Emit(ctx context.Context, eventType domain.EventType, booking *domain.Booking, now time.Time, payload map[string]interface{}) (*domain.BookingEvent, error)
	AfterCommit(ctx context.Context, events []*domain.BookingEvent, bookings ...*domain.Booking) []string
}

// PaymentGateway создание checkout-сессии у провайдера
type PaymentGateway interface {
	Enabled() bool
	InitializeWithGracefulDegradation(ctx context.Context, in paystack.InitializeRequest) (*paystack.InitializeResponse, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics счетчики созданных бронирований
type Metrics interface {
	RecordBookingCreated(source, status string)
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
