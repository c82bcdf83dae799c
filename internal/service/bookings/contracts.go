package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	ListByVendor(ctx context.Context, filter domain.VendorBookingsFilter) ([]*domain.Booking, error)
	ListUpcomingByVendor(ctx context.Context, vendorID int64, now time.Time, limit int) ([]*domain.Booking, error)
	ListByCustomer(ctx context.Context, userID int64, upcoming bool, now time.Time) ([]*domain.Booking, error)
	ListClaimable(ctx context.Context, email, phone *string, limit int) ([]*domain.Booking, error)
	GetVendorStats(ctx context.Context, vendorID int64) (*domain.VendorStats, error)
}

// VendorRepository интерфейс чтения вендоров
type VendorRepository interface {
	GetVendorByID(ctx context.Context, id int64) (*domain.Vendor, error)
}

// PaymentRepository интерфейс репозитория платежных намерений
type PaymentRepository interface {
	GetLatestByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentIntent, error)
	Update(ctx context.Context, intent *domain.PaymentIntent) error
}

// GiftCardRefunder возвращает списанный с подарочных карт баланс
type GiftCardRefunder interface {
	Refund(ctx context.Context, bookingID int64) (int64, error)
}

// EventRecorder пишет события в outbox и публикует их после коммита
type EventRecorder interface {
	Record(ctx context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error)
	Flush(ctx context.Context, events []*domain.BookingEvent)
}

// CalendarProjector интерфейс проектора календаря
type CalendarProjector interface {
	SyncBooking(ctx context.Context, booking *domain.Booking) error
	SyncBookings(ctx context.Context, bookings []*domain.Booking) error
	ListForVendor(ctx context.Context, vendorID int64, from, to time.Time) ([]*domain.CalendarEntry, error)
	ListForCustomer(ctx context.Context, userID int64, from, to time.Time) ([]*domain.CalendarEntry, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс счетчиков переходов
type Metrics interface {
	RecordTransition(status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production (UTC)
type RealTimeProvider struct{}

// Now возвращает текущее время в UTC
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
