package events

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Message тело сообщения для потребителей событий
type Message struct {
	ID         int64                  `json:"id"`
	Type       string                 `json:"type"`
	BookingID  int64                  `json:"bookingId"`
	VendorID   int64                  `json:"vendorId"`
	ServiceID  int64                  `json:"serviceId"`
	Reference  string                 `json:"reference"`
	Status     string                 `json:"status"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// NewMessage собирает сообщение из события
func NewMessage(event *domain.BookingEvent) Message {
	return Message{
		ID:         event.ID,
		Type:       string(event.Type),
		BookingID:  event.BookingID,
		VendorID:   event.VendorID,
		ServiceID:  event.ServiceID,
		Reference:  event.Reference,
		Status:     string(event.Status),
		Payload:    event.Payload,
		OccurredAt: event.OccurredAt,
	}
}

// JSONPublisher интерфейс брокера (pkg/mq.Publisher)
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key, messageID string, v any) error
}

// BrokerPublisher публикует события в topic exchange, routing key = тип события
type BrokerPublisher struct {
	broker JSONPublisher
}

// NewBrokerPublisher создает publisher поверх брокера
func NewBrokerPublisher(broker JSONPublisher) *BrokerPublisher {
	return &BrokerPublisher{broker: broker}
}

// Publish публикует событие
func (p *BrokerPublisher) Publish(ctx context.Context, event *domain.BookingEvent) error {
	messageID := fmt.Sprintf("booking-event-%d", event.ID)
	return p.broker.PublishJSON(ctx, string(event.Type), messageID, NewMessage(event))
}

// LogPublisher пишет события в лог, когда брокер выключен
type LogPublisher struct {
	logger Logger
}

// NewLogPublisher создает publisher в лог
func NewLogPublisher(logger Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish пишет событие в лог
func (p *LogPublisher) Publish(_ context.Context, event *domain.BookingEvent) error {
	p.logger.Info("event %s: booking=%d vendor=%d status=%s payload=%v",
		event.Type, event.BookingID, event.VendorID, event.Status, event.Payload)
	return nil
}
