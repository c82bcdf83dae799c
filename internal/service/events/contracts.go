package events

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// OutboxRepository интерфейс outbox репозитория
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error)
	ListPending(ctx context.Context, limit int) ([]*domain.BookingEvent, error)
	MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

// Publisher доставляет событие потребителям (уведомления, аналитика)
type Publisher interface {
	Publish(ctx context.Context, event *domain.BookingEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс счетчиков публикации
type Metrics interface {
	RecordOutbox(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
