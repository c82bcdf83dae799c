package claim_bookings

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

type BookingService interface {
	Claim(ctx context.Context, req *models.ClaimBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
