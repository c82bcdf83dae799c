package get_vendor_bookings

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

type BookingService interface {
	ListVendorBookings(ctx context.Context, req *models.VendorBookingsRequest) (*models.BookingListResponse, error)
	ListVendorUpcoming(ctx context.Context, identity domain.Identity, vendorID int64, limit int) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
