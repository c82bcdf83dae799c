package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/allocator"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

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

// Lifecycle переходы бронирования
type Lifecycle interface {
	CheckNotice(booking *domain.Booking, now time.Time) error
	Reschedule(ctx context.Context, booking *domain.Booking, newStart, newEnd time.Time, seatID, staffID *int64, now time.Time) (*domain.BookingEvent, error)
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
