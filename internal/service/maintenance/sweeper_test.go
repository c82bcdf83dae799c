package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
)

var now = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

type fakeSweepRepo struct {
	past, stale, due []int64
	pending          int
	gotDayStart      time.Time
	gotCreatedBefore time.Time
	gotUntil         time.Time
}

func (f *fakeSweepRepo) PastConfirmedIDs(_ context.Context, dayStart, _ time.Time, _ int) ([]int64, error) {
	f.gotDayStart = dayStart
	return f.past, nil
}

func (f *fakeSweepRepo) StaleAwaitingPaymentIDs(_ context.Context, createdBefore time.Time, _ int) ([]int64, error) {
	f.gotCreatedBefore = createdBefore
	return f.stale, nil
}

func (f *fakeSweepRepo) DueReminderIDs(_ context.Context, _, until time.Time, _ int) ([]int64, error) {
	f.gotUntil = until
	return f.due, nil
}

func (f *fakeSweepRepo) PendingOutboxCount(context.Context) (int, error) { return f.pending, nil }

type fakeBookings map[int64]*domain.Booking

func (f fakeBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f[id]
	if !ok {
		return nil, errors.New("booking not found")
	}
	return b, nil
}

type fakePayments struct {
	intents map[int64]*domain.PaymentIntent
	updated []*domain.PaymentIntent
}

func (f *fakePayments) GetLatestByBookingID(_ context.Context, bookingID int64) (*domain.PaymentIntent, error) {
	intent, ok := f.intents[bookingID]
	if !ok {
		return nil, paymentRepo.ErrIntentNotFound
	}
	return intent, nil
}

func (f *fakePayments) Update(_ context.Context, intent *domain.PaymentIntent) error {
	f.updated = append(f.updated, intent)
	return nil
}

type fakeLifecycle struct {
	completed, released, reminded []int64
	flushed                       int
	failOn                        int64
}

func (f *fakeLifecycle) Complete(_ context.Context, b *domain.Booking, at time.Time, payload map[string]interface{}) (*domain.BookingEvent, error) {
	if b.ID == f.failOn {
		return nil, errors.New("update failed")
	}
	b.Status = domain.StatusCompleted
	f.completed = append(f.completed, b.ID)
	return domain.NewBookingEvent(domain.EventBookingCompleted, b, at, payload), nil
}

func (f *fakeLifecycle) ReleaseForPaymentFailure(_ context.Context, b *domain.Booking, reason string, at time.Time) (*domain.BookingEvent, error) {
	b.Status = domain.StatusCancelled
	f.released = append(f.released, b.ID)
	return domain.NewBookingEvent(domain.EventBookingPaymentFailed, b, at, map[string]interface{}{"reason": reason}), nil
}

func (f *fakeLifecycle) MarkReminderSent(_ context.Context, b *domain.Booking, at time.Time) (*domain.BookingEvent, error) {
	b.ReminderSentAt = &at
	f.reminded = append(f.reminded, b.ID)
	return domain.NewBookingEvent(domain.EventBookingReminder, b, at, nil), nil
}

func (f *fakeLifecycle) AfterCommit(_ context.Context, events []*domain.BookingEvent, _ ...*domain.Booking) []string {
	f.flushed += len(events)
	return nil
}

type fakeRelay struct{ calls int }

func (f *fakeRelay) Relay(_ context.Context, batchSize int) (int, error) {
	f.calls++
	return batchSize, nil
}

type passTx struct{}

func (passTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	sweepRepo *fakeSweepRepo
	bookings  fakeBookings
	payments  *fakePayments
	lifecycle *fakeLifecycle
	relay     *fakeRelay
	sweeper   *Sweeper
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		sweepRepo: &fakeSweepRepo{},
		bookings:  fakeBookings{},
		payments:  &fakePayments{intents: map[int64]*domain.PaymentIntent{}},
		lifecycle: &fakeLifecycle{},
		relay:     &fakeRelay{},
	}
	f.sweeper = NewSweeper(f.sweepRepo, f.bookings, f.payments, f.lifecycle, f.relay, passTx{}, fixedTime{now}, opts, nopLogger{})
	return f
}

func booking(id int64, status domain.BookingStatus, end time.Time) *domain.Booking {
	return &domain.Booking{ID: id, VendorID: 1, ServiceID: 2, Status: status, ScheduledStart: end.Add(-time.Hour), ScheduledEnd: end}
}

func TestCompletePast(t *testing.T) {
	f := newFixture(Options{})
	f.bookings[1] = booking(1, domain.StatusConfirmed, now.Add(-2*time.Hour))
	f.bookings[2] = booking(2, domain.StatusCancelled, now.Add(-2*time.Hour))
	f.bookings[3] = booking(3, domain.StatusConfirmed, now.Add(time.Hour))
	f.sweepRepo.past = []int64{1, 2, 3}

	n, err := f.sweeper.CompletePast(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, f.lifecycle.completed)
	assert.Equal(t, 1, f.lifecycle.flushed)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), f.sweepRepo.gotDayStart)
}

func TestCompletePast_ContinuesAfterFailure(t *testing.T) {
	f := newFixture(Options{})
	f.bookings[1] = booking(1, domain.StatusConfirmed, now.Add(-2*time.Hour))
	f.bookings[2] = booking(2, domain.StatusConfirmed, now.Add(-time.Hour))
	f.sweepRepo.past = []int64{1, 2, 99}
	f.lifecycle.failOn = 1

	n, err := f.sweeper.CompletePast(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSweep)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{2}, f.lifecycle.completed)
}

func TestExpirePayments_DisabledByDefault(t *testing.T) {
	f := newFixture(Options{})
	f.sweepRepo.stale = []int64{1}

	n, err := f.sweeper.ExpirePayments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.lifecycle.released)
}

func TestExpirePayments(t *testing.T) {
	f := newFixture(Options{AwaitingPaymentTTL: 30 * time.Minute})
	f.bookings[1] = booking(1, domain.StatusAwaitingPayment, now.Add(24*time.Hour))
	f.bookings[2] = booking(2, domain.StatusAwaitingPayment, now.Add(24*time.Hour))
	f.bookings[3] = booking(3, domain.StatusConfirmed, now.Add(24*time.Hour))
	f.payments.intents[1] = &domain.PaymentIntent{ID: 10, Status: domain.IntentRequiresPaymentMethod}
	f.payments.intents[2] = &domain.PaymentIntent{ID: 20, Status: domain.IntentSucceeded}
	f.sweepRepo.stale = []int64{1, 2, 3}

	n, err := f.sweeper.ExpirePayments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, f.lifecycle.released)
	assert.Equal(t, now.Add(-30*time.Minute), f.sweepRepo.gotCreatedBefore)

	require.Len(t, f.payments.updated, 1)
	assert.Equal(t, domain.IntentFailed, f.payments.updated[0].Status)
	require.NotNil(t, f.payments.updated[0].LastError)
	assert.Equal(t, PaymentExpiredReason, *f.payments.updated[0].LastError)
}

func TestSendReminders(t *testing.T) {
	sent := now.Add(-time.Hour)
	f := newFixture(Options{ReminderLead: 24 * time.Hour})
	f.bookings[1] = booking(1, domain.StatusConfirmed, now.Add(3*time.Hour))
	f.bookings[2] = booking(2, domain.StatusConfirmed, now.Add(3*time.Hour))
	f.bookings[2].ReminderSentAt = &sent
	f.sweepRepo.due = []int64{1, 2}

	n, err := f.sweeper.SendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, f.lifecycle.reminded)
	assert.Equal(t, now.Add(24*time.Hour), f.sweepRepo.gotUntil)
}

func TestRelayOutbox(t *testing.T) {
	f := newFixture(Options{OutboxBatchSize: 25})

	n, err := f.sweeper.RelayOutbox(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, f.relay.calls)

	f.sweepRepo.pending = 3
	n, err = f.sweeper.RelayOutbox(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, n)
	assert.Equal(t, 1, f.relay.calls)
}

func TestRun_UnknownJob(t *testing.T) {
	f := newFixture(Options{})
	_, err := f.sweeper.Run(context.Background(), "vacuum")
	assert.ErrorIs(t, err, ErrUnknownJob)
}
