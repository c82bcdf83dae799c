package get_calendar

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

type BookingService interface {
	VendorCalendar(ctx context.Context, identity domain.Identity, vendorID int64, from, to time.Time) (*models.CalendarResponse, error)
	CustomerCalendar(ctx context.Context, identity domain.Identity, from, to time.Time) (*models.CalendarResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
