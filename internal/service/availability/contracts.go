package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// AvailabilityRepository интерфейс репозитория расписания вендора
type AvailabilityRepository interface {
	ListWeeklyByVendor(ctx context.Context, vendorID int64) ([]domain.WeeklyWindow, error)
	ReplaceWeekly(ctx context.Context, vendorID int64, windows []domain.WeeklyWindow) error
	CreateOverride(ctx context.Context, o *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error)
	GetOverrideByID(ctx context.Context, id int64) (*domain.AvailabilityOverride, error)
	ListOverridesInRange(ctx context.Context, vendorID int64, from, to time.Time) ([]domain.AvailabilityOverride, error)
	DeleteOverride(ctx context.Context, id int64) error
}

// VendorRepository интерфейс чтения вендоров
type VendorRepository interface {
	GetVendorByID(ctx context.Context, id int64) (*domain.Vendor, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
