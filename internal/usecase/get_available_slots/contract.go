package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// CatalogRepository интерфейс чтения услуг и вендоров
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetVendorByID(ctx context.Context, id int64) (*domain.Vendor, error)
}

// AvailabilityRepository интерфейс репозитория расписания
type AvailabilityRepository interface {
	ListWeeklyByVendor(ctx context.Context, vendorID int64) ([]domain.WeeklyWindow, error)
	ListOverridesInRange(ctx context.Context, vendorID int64, from, to time.Time) ([]domain.AvailabilityOverride, error)
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
