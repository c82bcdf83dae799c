package get_vendor_availability

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability/models"
)

type AvailabilityService interface {
	GetWeekly(ctx context.Context, vendorID int64) (*models.WeeklyAvailabilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
