package maintenance

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// SweepRepository выборка кандидатов для обходов
type SweepRepository interface {
	PastConfirmedIDs(ctx context.Context, dayStart, now time.Time, limit int) ([]int64, error)
	StaleAwaitingPaymentIDs(ctx context.Context, createdBefore time.Time, limit int) ([]int64, error)
	DueReminderIDs(ctx context.Context, now, until time.Time, limit int) ([]int64, error)
	PendingOutboxCount(ctx context.Context) (int, error)
}

// BookingRepository интерфейс чтения бронирований под блокировкой
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// PaymentRepository интерфейс репозитория платежных намерений
type PaymentRepository interface {
	GetLatestByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentIntent, error)
	Update(ctx context.Context, intent *domain.PaymentIntent) error
}

// Lifecycle переходы статусов бронирования
type Lifecycle interface {
	Complete(ctx context.Context, booking *domain.Booking, now time.Time, payload map[string]interface{}) (*domain.BookingEvent, error)
	ReleaseForPaymentFailure(ctx context.Context, booking *domain.Booking, reason string, now time.Time) (*domain.BookingEvent, error)
	MarkReminderSent(ctx context.Context, booking *domain.Booking, now time.Time) (*domain.BookingEvent, error)
	AfterCommit(ctx context.Context, events []*domain.BookingEvent, bookings ...*domain.Booking) []string
}

// OutboxRelay повторная публикация событий
type OutboxRelay interface {
	Relay(ctx context.Context, batchSize int) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
