package manage_overrides

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability/models"
)

type AvailabilityService interface {
	CreateOverride(ctx context.Context, req *models.CreateOverrideRequest) (*models.OverrideResponse, error)
	ListOverrides(ctx context.Context, req *models.ListOverridesRequest) (*models.OverrideListResponse, error)
	DeleteOverride(ctx context.Context, req *models.DeleteOverrideRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
