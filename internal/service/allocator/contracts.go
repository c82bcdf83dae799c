package allocator

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// BookingRepository интерфейс чтения пересекающихся бронирований
type BookingRepository interface {
	ListActiveOverlapping(ctx context.Context, q domain.OverlapQuery) ([]*domain.Booking, error)
}

// SeatRepository интерфейс чтения мест вендора
type SeatRepository interface {
	ListEligibleActive(ctx context.Context, vendorID, serviceID int64) ([]*domain.Seat, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
