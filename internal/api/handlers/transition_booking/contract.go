package transition_booking

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

type BookingService interface {
	Complete(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error)
	MarkNoShow(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error)
	MarkPaid(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
