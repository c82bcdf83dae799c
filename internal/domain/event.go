package domain

import "time"

// EventType is the routing key of a booking domain event
type EventType string

const (
	EventBookingCreated         EventType = "booking.created"
	EventBookingAwaitingPayment EventType = "booking.awaiting_payment"
	EventBookingConfirmed       EventType = "booking.confirmed"
	EventBookingPaymentFailed   EventType = "booking.payment_failed"
	EventBookingCancelled       EventType = "booking.cancelled"
	EventBookingRescheduled     EventType = "booking.rescheduled"
	EventBookingCompleted       EventType = "booking.completed"
	EventBookingNoShow          EventType = "booking.no_show"
	EventBookingReminder        EventType = "booking.reminder"
)

// BookingEvent is an outbox record describing a lifecycle change
type BookingEvent struct {
	ID          int64
	Type        EventType
	BookingID   int64
	VendorID    int64
	ServiceID   int64
	Reference   string
	Status      BookingStatus
	Payload     map[string]interface{}
	OccurredAt  time.Time
	PublishedAt *time.Time
	Attempts    int
	LastError   *string
}

// NewBookingEvent builds an event from a booking snapshot
func NewBookingEvent(eventType EventType, b *Booking, occurredAt time.Time, payload map[string]interface{}) *BookingEvent {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		VendorID:   b.VendorID,
		ServiceID:  b.ServiceID,
		Reference:  b.Reference,
		Status:     b.Status,
		Payload:    payload,
		OccurredAt: occurredAt,
	}
}
