package reconcile_payment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

const secret = "sk_test_secret"

var now = time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

type fakePayments struct{ byRef map[string]*domain.PaymentIntent }

func (f *fakePayments) GetByProviderRef(_ context.Context, ref string) (*domain.PaymentIntent, error) {
	intent, ok := f.byRef[ref]
	if !ok {
		return nil, paymentRepo.ErrIntentNotFound
	}
	return intent, nil
}

func (f *fakePayments) Update(_ context.Context, intent *domain.PaymentIntent) error {
	f.byRef[intent.ProviderRef] = intent
	return nil
}

type fakeBookings struct{ items map[int64]*domain.Booking }

func (f *fakeBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	return f.items[id], nil
}

type fakeSupplyOrders struct{ items map[int64]*domain.SupplyOrder }

func (f *fakeSupplyOrders) GetByID(_ context.Context, id int64) (*domain.SupplyOrder, error) {
	return f.items[id], nil
}

func (f *fakeSupplyOrders) UpdateStatus(_ context.Context, order *domain.SupplyOrder) error {
	f.items[order.ID] = order
	return nil
}

type fakeGiftCards struct{ activated []int64 }

func (f *fakeGiftCards) Activate(_ context.Context, id int64) error {
	f.activated = append(f.activated, id)
	return nil
}

type fakeLifecycle struct {
	emitted   []domain.EventType
	committed []*domain.BookingEvent
}

func (f *fakeLifecycle) Confirm(_ context.Context, b *domain.Booking, at time.Time, _ bool, payload map[string]interface{}) (*domain.BookingEvent, error) {
	b.Status = domain.StatusConfirmed
	b.PaidAt = &at
	f.emitted = append(f.emitted, domain.EventBookingConfirmed)
	return domain.NewBookingEvent(domain.EventBookingConfirmed, b, at, payload), nil
}

func (f *fakeLifecycle) ReleaseForPaymentFailure(_ context.Context, b *domain.Booking, reason string, at time.Time) (*domain.BookingEvent, error) {
	released := b.IsAwaitingPayment()
	if released {
		b.Status = domain.StatusCancelled
	}
	f.emitted = append(f.emitted, domain.EventBookingPaymentFailed)
	return domain.NewBookingEvent(domain.EventBookingPaymentFailed, b, at, map[string]interface{}{
		"reason": reason, "slotReleased": released,
	}), nil
}

func (f *fakeLifecycle) AfterCommit(_ context.Context, events []*domain.BookingEvent, _ ...*domain.Booking) []string {
	f.committed = append(f.committed, events...)
	return nil
}

type passTx struct{}

func (passTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type countingMetrics struct{ outcomes map[string]int }

func (m *countingMetrics) RecordWebhook(event, outcome string) { m.outcomes[event+"/"+outcome]++ }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	payments  *fakePayments
	bookings  *fakeBookings
	orders    *fakeSupplyOrders
	giftCards *fakeGiftCards
	lifecycle *fakeLifecycle
	metrics   *countingMetrics
	verifier  *paystack.Verifier
	uc        *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		payments: &fakePayments{byRef: map[string]*domain.PaymentIntent{
			"book_ref": {
				ID: 1, Subject: domain.SubjectBooking, BookingID: ptr.Ptr(int64(5)), ProviderRef: "book_ref",
				Amount: 3000, Currency: "GHS", Status: domain.IntentRequiresPaymentMethod,
				Metadata: map[string]interface{}{"bookingId": int64(5)},
			},
			"gift_ref": {
				ID: 2, Subject: domain.SubjectGiftCard, GiftCardID: ptr.Ptr(int64(8)), ProviderRef: "gift_ref",
				Amount: 5000, Currency: "GHS", Status: domain.IntentRequiresPaymentMethod,
			},
			"supply_ref": {
				ID: 3, Subject: domain.SubjectSupplyOrder, SupplyOrderID: ptr.Ptr(int64(9)), ProviderRef: "supply_ref",
				Amount: 7000, Currency: "GHS", Status: domain.IntentRequiresPaymentMethod,
			},
		}},
		bookings: &fakeBookings{items: map[int64]*domain.Booking{
			5: {ID: 5, VendorID: 1, Reference: "book_ref", Status: domain.StatusAwaitingPayment},
		}},
		orders: &fakeSupplyOrders{items: map[int64]*domain.SupplyOrder{
			9: {ID: 9, VendorID: 1, Status: domain.SupplyOrderRequiresPayment},
		}},
		giftCards: &fakeGiftCards{},
		lifecycle: &fakeLifecycle{},
		metrics:   &countingMetrics{outcomes: map[string]int{}},
		verifier:  paystack.NewVerifier(secret),
	}
	f.uc = NewUseCase(f.verifier, f.payments, f.bookings, f.orders, f.giftCards, f.lifecycle,
		passTx{}, fixedTime{now}, f.metrics, "ghs", nopLogger{})
	return f
}

func (f *fixture) deliver(t *testing.T, event string, data map[string]interface{}) (*Response, error) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"event": event, "data": data})
	require.NoError(t, err)
	return f.uc.Execute(context.Background(), &Request{Signature: f.verifier.Sign(body), RawBody: body})
}

func charge(reference string, amount int64) map[string]interface{} {
	return map[string]interface{}{
		"reference": reference,
		"amount":    amount,
		"currency":  "ghs",
		"status":    "success",
		"channel":   "mobile_money",
		"paid_at":   "2026-03-08T11:59:00Z",
	}
}

func TestExecute_RejectsBadSignatureBeforeAnyLookup(t *testing.T) {
	f := newFixture()
	body := []byte(`{"event":"charge.success","data":{"reference":"book_ref","amount":3000}}`)

	_, err := f.uc.Execute(context.Background(), &Request{Signature: "deadbeef", RawBody: body})
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, domain.IntentRequiresPaymentMethod, f.payments.byRef["book_ref"].Status)

	unconfigured := NewUseCase(paystack.NewVerifier(""), f.payments, f.bookings, f.orders, f.giftCards, f.lifecycle,
		passTx{}, fixedTime{now}, nil, "GHS", nopLogger{})
	_, err = unconfigured.Execute(context.Background(), &Request{Signature: f.verifier.Sign(body), RawBody: body})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestExecute_MalformedPayload(t *testing.T) {
	f := newFixture()
	body := []byte(`{"data":{}}`)

	_, err := f.uc.Execute(context.Background(), &Request{Signature: f.verifier.Sign(body), RawBody: body})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestExecute_SuccessConfirmsBooking(t *testing.T) {
	f := newFixture()

	resp, err := f.deliver(t, paystack.EventChargeSuccess, charge("book_ref", 3000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, resp.Outcome)

	intent := f.payments.byRef["book_ref"]
	assert.Equal(t, domain.IntentSucceeded, intent.Status)
	assert.Equal(t, now, *intent.ConfirmedAt)
	assert.Equal(t, "success", intent.Metadata["paystackStatus"])
	assert.Equal(t, int64(5), intent.Metadata["bookingId"])

	assert.Equal(t, domain.StatusConfirmed, f.bookings.items[5].Status)
	require.Len(t, f.lifecycle.committed, 1)
	assert.Equal(t, "book_ref", f.lifecycle.committed[0].Payload["paystackReference"])
	assert.Equal(t, 1, f.metrics.outcomes["charge.success/confirmed"])
}

func TestExecute_DuplicateSuccessIsNoOp(t *testing.T) {
	f := newFixture()

	_, err := f.deliver(t, paystack.EventChargeSuccess, charge("book_ref", 3000))
	require.NoError(t, err)

	resp, err := f.deliver(t, paystack.EventChargeSuccess, charge("book_ref", 3000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	assert.Equal(t, []domain.EventType{domain.EventBookingConfirmed}, f.lifecycle.emitted)
}

func TestExecute_AmountMismatchReleasesSlot(t *testing.T) {
	f := newFixture()

	resp, err := f.deliver(t, paystack.EventChargeSuccess, charge("book_ref", 2999))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmountMismatch, resp.Outcome)

	intent := f.payments.byRef["book_ref"]
	assert.Equal(t, domain.IntentFailed, intent.Status)
	assert.Equal(t, ReasonAmountMismatch, *intent.LastError)
	assert.Equal(t, domain.StatusCancelled, f.bookings.items[5].Status)
	assert.Equal(t, []domain.EventType{domain.EventBookingPaymentFailed}, f.lifecycle.emitted)
}

func TestExecute_CurrencyMismatch(t *testing.T) {
	f := newFixture()
	data := charge("book_ref", 3000)
	data["currency"] = "NGN"

	resp, err := f.deliver(t, paystack.EventChargeSuccess, data)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCurrencyMismatch, resp.Outcome)
	assert.Equal(t, ReasonCurrencyMismatch, *f.payments.byRef["book_ref"].LastError)
}

func TestExecute_MissingCurrencyDefaultsToConfigured(t *testing.T) {
	f := newFixture()
	data := charge("book_ref", 3000)
	delete(data, "currency")

	resp, err := f.deliver(t, paystack.EventChargeSuccess, data)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, resp.Outcome)
}

func TestExecute_FailureThenLateSuccessRequiresRefund(t *testing.T) {
	f := newFixture()

	resp, err := f.deliver(t, paystack.EventChargeFailed, map[string]interface{}{"reference": "book_ref"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, resp.Outcome)
	assert.Equal(t, "Paystack reported charge.failed", *f.payments.byRef["book_ref"].LastError)
	assert.Equal(t, domain.StatusCancelled, f.bookings.items[5].Status)
	assert.Equal(t, true, f.lifecycle.committed[0].Payload["slotReleased"])

	resp, err = f.deliver(t, paystack.EventChargeSuccess, charge("book_ref", 3000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRequiresRefund, resp.Outcome)
	assert.NotEmpty(t, resp.Warnings)

	intent := f.payments.byRef["book_ref"]
	assert.Equal(t, domain.IntentSucceeded, intent.Status)
	assert.Equal(t, true, intent.Metadata["requiresRefund"])
	assert.Equal(t, domain.StatusCancelled, f.bookings.items[5].Status)
}

func TestExecute_ReversalKeepsConfirmedBooking(t *testing.T) {
	f := newFixture()
	f.bookings.items[5].Status = domain.StatusConfirmed

	resp, err := f.deliver(t, paystack.EventChargeReversed, map[string]interface{}{"reference": "book_ref"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, resp.Outcome)
	assert.Equal(t, domain.StatusConfirmed, f.bookings.items[5].Status)
	require.Len(t, f.lifecycle.committed, 1)
	assert.Equal(t, false, f.lifecycle.committed[0].Payload["slotReleased"])
}

func TestExecute_UnknownReferenceIsAcknowledged(t *testing.T) {
	f := newFixture()

	resp, err := f.deliver(t, paystack.EventChargeSuccess, charge("nope", 3000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownReference, resp.Outcome)
	assert.Empty(t, f.lifecycle.emitted)
}

func TestExecute_UnsupportedEventIsIgnored(t *testing.T) {
	f := newFixture()

	resp, err := f.deliver(t, "transfer.success", map[string]interface{}{"reference": "book_ref"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, resp.Outcome)
	assert.Equal(t, domain.IntentRequiresPaymentMethod, f.payments.byRef["book_ref"].Status)
}

func TestExecute_GiftCardAndSupplyOrderSubjects(t *testing.T) {
	f := newFixture()

	resp, err := f.deliver(t, paystack.EventChargeSuccess, charge("gift_ref", 5000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeGiftCardActive, resp.Outcome)
	assert.Equal(t, []int64{8}, f.giftCards.activated)

	resp, err = f.deliver(t, paystack.EventChargeSuccess, charge("supply_ref", 7000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSupplyOrderPaid, resp.Outcome)
	assert.Equal(t, domain.SupplyOrderWaitingOnSupplier, f.orders.items[9].Status)
}

func TestExecute_SupplyOrderFailureCancelsOrder(t *testing.T) {
	f := newFixture()

	_, err := f.deliver(t, paystack.EventChargeFailed, map[string]interface{}{"reference": "supply_ref"})
	require.NoError(t, err)
	assert.Equal(t, domain.SupplyOrderCancelled, f.orders.items[9].Status)
	assert.Equal(t, domain.IntentFailed, f.payments.byRef["supply_ref"].Status)
}
