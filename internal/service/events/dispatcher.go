package events

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

const (
	outboxPublished = "published"
	outboxFailed    = "failed"
)

// Dispatcher доставка доменных событий через outbox
//
// Record пишет событие в транзакции, которая его породила.
// Flush публикует записанные события после коммита.
// Relay дочищает все, что не удалось опубликовать (доставка at-least-once).
type Dispatcher struct {
	outbox       OutboxRepository
	publisher    Publisher
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// NewDispatcher создает новый экземпляр диспетчера событий
func NewDispatcher(
	outbox OutboxRepository,
	publisher Publisher,
	txManager TransactionManager,
	timeProvider TimeProvider,
	metrics Metrics,
	logger Logger,
) *Dispatcher {
	return &Dispatcher{
		outbox:       outbox,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: timeProvider,
		metrics:      metrics,
		logger:       logger,
	}
}

// Record записывает событие в outbox в рамках текущей транзакции
func (d *Dispatcher) Record(ctx context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error) {
	saved, err := d.outbox.Insert(ctx, event)
	if err != nil {
		d.logger.Error("Record: failed to write event type=%s booking=%d: %v", event.Type, event.BookingID, err)
		return nil, fmt.Errorf("%w: Record - insert: %v", ErrRecord, err)
	}
	return saved, nil
}

// Flush публикует события, записанные в уже закоммиченной транзакции
// Ошибки публикации не возвращаются: событие остается в outbox и будет отправлено Relay
func (d *Dispatcher) Flush(ctx context.Context, events []*domain.BookingEvent) {
	for _, event := range events {
		if event == nil || event.ID == 0 {
			continue
		}
		d.publishOne(ctx, event)
	}
}

// Relay повторно публикует неотправленные события, возвращает количество опубликованных
func (d *Dispatcher) Relay(ctx context.Context, batchSize int) (int, error) {
	published := 0

	err := d.txManager.Do(ctx, func(txCtx context.Context) error {
		pending, err := d.outbox.ListPending(txCtx, batchSize)
		if err != nil {
			return err
		}

		for _, event := range pending {
			if d.publishOne(txCtx, event) {
				published++
			}
		}
		return nil
	})
	if err != nil {
		d.logger.Error("Relay: failed to relay outbox: %v", err)
		return published, fmt.Errorf("%w: Relay - %v", ErrRelay, err)
	}

	if published > 0 {
		d.logger.Info("Relay: published %d pending events", published)
	}
	return published, nil
}

func (d *Dispatcher) publishOne(ctx context.Context, event *domain.BookingEvent) bool {
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("publish: event id=%d type=%s failed: %v", event.ID, event.Type, err)
		d.recordMetric(outboxFailed)
		if markErr := d.outbox.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			d.logger.Error("publish: failed to mark event id=%d failed: %v", event.ID, markErr)
		}
		return false
	}

	d.recordMetric(outboxPublished)
	if err := d.outbox.MarkPublished(ctx, event.ID, d.timeProvider.Now()); err != nil {
		// Событие уйдет повторно при следующем Relay, потребители идемпотентны
		d.logger.Error("publish: failed to mark event id=%d published: %v", event.ID, err)
		return false
	}
	return true
}

func (d *Dispatcher) recordMetric(result string) {
	if d.metrics != nil {
		d.metrics.RecordOutbox(result)
	}
}
