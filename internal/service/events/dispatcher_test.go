package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

type fakeOutbox struct {
	events []*domain.BookingEvent
}

func (f *fakeOutbox) Insert(_ context.Context, e *domain.BookingEvent) (*domain.BookingEvent, error) {
	e.ID = int64(len(f.events) + 1)
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeOutbox) ListPending(_ context.Context, limit int) ([]*domain.BookingEvent, error) {
	out := make([]*domain.BookingEvent, 0)
	for _, e := range f.events {
		if e.PublishedAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, id int64, at time.Time) error {
	f.events[id-1].PublishedAt = &at
	f.events[id-1].Attempts++
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id int64, reason string) error {
	f.events[id-1].Attempts++
	f.events[id-1].LastError = &reason
	return nil
}

type fakePublisher struct {
	fail      bool
	published []domain.EventType
}

func (p *fakePublisher) Publish(_ context.Context, e *domain.BookingEvent) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, e.Type)
	return nil
}

type fakeBroker struct {
	key, messageID string
	body           any
}

func (b *fakeBroker) PublishJSON(_ context.Context, key, messageID string, v any) error {
	b.key, b.messageID, b.body = key, messageID, v
	return nil
}

type passTx struct{}

func (passTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type countingMetrics struct{ results map[string]int }

func (m *countingMetrics) RecordOutbox(result string) { m.results[result]++ }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var now = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func newBooking() *domain.Booking {
	return &domain.Booking{ID: 5, VendorID: 1, ServiceID: 2, Reference: "book_abc", Status: domain.StatusConfirmed}
}

func TestDispatcher_RecordThenFlush(t *testing.T) {
	outbox := &fakeOutbox{}
	pub := &fakePublisher{}
	m := &countingMetrics{results: map[string]int{}}
	d := NewDispatcher(outbox, pub, passTx{}, fixedTime{now}, m, nopLogger{})

	e, err := d.Record(context.Background(), domain.NewBookingEvent(domain.EventBookingConfirmed, newBooking(), now, nil))
	require.NoError(t, err)

	d.Flush(context.Background(), []*domain.BookingEvent{e})

	assert.Equal(t, []domain.EventType{domain.EventBookingConfirmed}, pub.published)
	require.NotNil(t, outbox.events[0].PublishedAt)
	assert.Equal(t, 1, m.results[outboxPublished])
}

func TestDispatcher_FailedFlushIsRelayed(t *testing.T) {
	outbox := &fakeOutbox{}
	pub := &fakePublisher{fail: true}
	d := NewDispatcher(outbox, pub, passTx{}, fixedTime{now}, nil, nopLogger{})

	e, err := d.Record(context.Background(), domain.NewBookingEvent(domain.EventBookingCancelled, newBooking(), now, nil))
	require.NoError(t, err)

	d.Flush(context.Background(), []*domain.BookingEvent{e})
	assert.Nil(t, outbox.events[0].PublishedAt)
	require.NotNil(t, outbox.events[0].LastError)

	pub.fail = false
	n, err := d.Relay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotNil(t, outbox.events[0].PublishedAt)
	assert.Equal(t, 2, outbox.events[0].Attempts)

	n, err = d.Relay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBrokerPublisher_UsesEventTypeAsRoutingKey(t *testing.T) {
	broker := &fakeBroker{}
	p := NewBrokerPublisher(broker)

	event := domain.NewBookingEvent(domain.EventBookingRescheduled, newBooking(), now, map[string]interface{}{"previousStart": "x"})
	event.ID = 9
	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, "booking.rescheduled", broker.key)
	assert.Equal(t, "booking-event-9", broker.messageID)
	msg, ok := broker.body.(Message)
	require.True(t, ok)
	assert.Equal(t, int64(5), msg.BookingID)
	assert.Equal(t, "x", msg.Payload["previousStart"])
}
