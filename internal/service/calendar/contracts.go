package calendar

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// CalendarRepository интерфейс репозитория записей календаря
type CalendarRepository interface {
	Upsert(ctx context.Context, entry *domain.CalendarEntry) error
	Delete(ctx context.Context, bookingID int64, ownerType domain.CalendarOwnerType) error
	ListByOwner(ctx context.Context, ownerType domain.CalendarOwnerType, ownerID int64, from, to time.Time) ([]*domain.CalendarEntry, error)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
