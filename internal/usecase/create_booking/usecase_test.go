package create_booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/allocator"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/giftcards"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

var (
	now       = time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	slotStart = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
)

type fakeCatalog struct {
	services map[int64]*domain.Service
	vendors  map[int64]*domain.Vendor
}

func (f *fakeCatalog) GetServiceByID(_ context.Context, id int64) (*domain.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, serviceRepo.ErrServiceNotFound
}

func (f *fakeCatalog) GetVendorByID(_ context.Context, id int64) (*domain.Vendor, error) {
	if v, ok := f.vendors[id]; ok {
		return v, nil
	}
	return nil, serviceRepo.ErrVendorNotFound
}

type fakeSlots struct{ slots []domain.Slot }

func (f *fakeSlots) SlotsForDay(context.Context, *domain.Service, time.Time) ([]domain.Slot, error) {
	return f.slots, nil
}

type fakeAllocator struct {
	err error
	got allocator.Request
}

func (f *fakeAllocator) Allocate(_ context.Context, req allocator.Request) (*allocator.Allocation, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &allocator.Allocation{SeatID: ptr.Ptr(int64(3)), StaffID: ptr.Ptr(int64(30))}, nil
}

type fakeBookings struct{ created []*domain.Booking }

func (f *fakeBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	b.ID = int64(len(f.created) + 1)
	f.created = append(f.created, b)
	return b, nil
}

type fakePayments struct{ created []*domain.PaymentIntent }

func (f *fakePayments) Create(_ context.Context, intent *domain.PaymentIntent) (*domain.PaymentIntent, error) {
	intent.ID = int64(len(f.created) + 1)
	f.created = append(f.created, intent)
	return intent, nil
}

type fakeGiftCards struct {
	balance  int64
	err      error
	redeemed []int64
	settled  []string
}

func (f *fakeGiftCards) Apply(_ context.Context, req giftcards.ApplyRequest) (*domain.GiftCardApplication, error) {
	if f.err != nil {
		return nil, f.err
	}
	app := giftcards.Compute(f.balance, req.DepositDue, req.BalanceDue)
	app.GiftCardID = 77
	return app, nil
}

func (f *fakeGiftCards) Redeem(_ context.Context, _ *domain.GiftCardApplication, bookingID int64) error {
	f.redeemed = append(f.redeemed, bookingID)
	return nil
}

func (f *fakeGiftCards) SettleRejected(_ context.Context, code string) error {
	f.settled = append(f.settled, code)
	return nil
}

type fakeLifecycle struct {
	emitted   []domain.EventType
	committed int
	warnings  []string
}

func (f *fakeLifecycle) Emit(_ context.Context, t domain.EventType, b *domain.Booking, at time.Time, payload map[string]interface{}) (*domain.BookingEvent, error) {
	f.emitted = append(f.emitted, t)
	return domain.NewBookingEvent(t, b, at, payload), nil
}

func (f *fakeLifecycle) AfterCommit(_ context.Context, events []*domain.BookingEvent, _ ...*domain.Booking) []string {
	f.committed += len(events)
	return f.warnings
}

type fakeGateway struct {
	enabled bool
	err     error
	calls   int
}

func (f *fakeGateway) Enabled() bool { return f.enabled }

func (f *fakeGateway) InitializeWithGracefulDegradation(_ context.Context, in paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &paystack.InitializeResponse{AuthorizationURL: "https://checkout/" + in.Reference, Reference: in.Reference}, nil
}

type passTx struct{}

func (passTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// lostRaceTx повторы исчерпаны: каждая попытка упиралась в конфликт сериализации
type lostRaceTx struct{}

func (lostRaceTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return fmt.Errorf("txmanager: failed to commit transaction: %w", &pq.Error{Code: "40001"})
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type countingMetrics struct{ created map[string]int }

func (m *countingMetrics) RecordBookingCreated(source, status string) {
	m.created[source+"/"+status]++
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	catalog   *fakeCatalog
	slots     *fakeSlots
	allocator *fakeAllocator
	bookings  *fakeBookings
	payments  *fakePayments
	giftCards *fakeGiftCards
	lifecycle *fakeLifecycle
	gateway   *fakeGateway
	metrics   *countingMetrics
	uc        *UseCase
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		catalog: &fakeCatalog{
			services: map[int64]*domain.Service{
				7: {ID: 7, VendorID: 1, BasePrice: 10000, DurationMinutes: 60, DepositPercent: ptr.Ptr(30), IsActive: true},
			},
			vendors: map[int64]*domain.Vendor{
				1: {ID: 1, OwnerUserID: ptr.Ptr(int64(100)), Status: domain.VendorStatusVerified},
			},
		},
		slots:     &fakeSlots{slots: []domain.Slot{{Start: slotStart, End: slotStart.Add(time.Hour)}}},
		allocator: &fakeAllocator{},
		bookings:  &fakeBookings{},
		payments:  &fakePayments{},
		giftCards: &fakeGiftCards{},
		lifecycle: &fakeLifecycle{},
		gateway:   &fakeGateway{},
		metrics:   &countingMetrics{created: map[string]int{}},
	}
	if opts.Currency == "" {
		opts.Currency = "ghs"
	}
	f.uc = NewUseCase(f.catalog, f.slots, f.allocator, f.bookings, f.payments, f.giftCards, f.lifecycle,
		f.gateway, passTx{}, fixedTime{now}, f.metrics, opts, nopLogger{})
	return f
}

func onlineRequest() *Request {
	return &Request{
		Source:       domain.SourceOnline,
		ServiceID:    7,
		StartAt:      slotStart,
		CustomerName: "  Ama Mensah ",
	}
}

func TestExecute_OnlineBookingAwaitsDeposit(t *testing.T) {
	f := newFixture(Options{})
	req := onlineRequest()
	req.Identity = &domain.Identity{UserID: 55, Role: domain.RoleCustomer, Email: ptr.Ptr("Ama@Example.COM"), Phone: ptr.Ptr("0241234567")}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, domain.StatusAwaitingPayment, b.Status)
	assert.Equal(t, "Ama Mensah", b.CustomerName)
	assert.Equal(t, "ama@example.com", *b.CustomerEmail)
	assert.Equal(t, "0241234567", *b.CustomerPhone)
	assert.Equal(t, int64(55), *b.CustomerUserID)
	assert.Equal(t, "GHS", b.Currency)
	assert.Equal(t, int64(10000), b.Price)
	assert.Equal(t, int64(3000), b.Deposit)
	assert.Equal(t, int64(7000), b.Balance)
	assert.Zero(t, b.GiftCardApplied)
	assert.True(t, b.AmountsConsistent())
	assert.Equal(t, int64(3), *b.SeatID)
	assert.Regexp(t, regexp.MustCompile(`^book_[0-9a-f]{24}$`), b.Reference)

	require.NotNil(t, resp.PaymentIntent)
	assert.Equal(t, b.Reference, resp.PaymentIntent.ProviderRef)
	assert.Equal(t, int64(3000), resp.PaymentIntent.Amount)
	assert.Equal(t, domain.IntentRequiresPaymentMethod, resp.PaymentIntent.Status)
	assert.Equal(t, domain.SubjectBooking, resp.PaymentIntent.Subject)

	assert.Equal(t, []domain.EventType{domain.EventBookingCreated, domain.EventBookingAwaitingPayment}, f.lifecycle.emitted)
	assert.Equal(t, 2, f.lifecycle.committed)
	assert.Equal(t, 1, f.metrics.created["ONLINE/AWAITING_PAYMENT"])

	require.NotNil(t, resp.Checkout)
	assert.Equal(t, []string{"mobile_money", "card"}, resp.Checkout.Channels)
	assert.Nil(t, resp.Checkout.AuthorizationURL)
}

func TestExecute_ZeroDepositConfirms(t *testing.T) {
	f := newFixture(Options{})
	f.catalog.services[7].DepositPercent = ptr.Ptr(0)

	resp, err := f.uc.Execute(context.Background(), onlineRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	assert.Nil(t, resp.PaymentIntent)
	assert.Nil(t, resp.Checkout)
	assert.Empty(t, f.payments.created)
	assert.Equal(t, []domain.EventType{domain.EventBookingCreated, domain.EventBookingConfirmed}, f.lifecycle.emitted)
}

func TestExecute_Manual(t *testing.T) {
	f := newFixture(Options{})
	req := onlineRequest()
	req.Source = domain.SourceManual
	req.VendorID = 1
	req.Identity = &domain.Identity{UserID: 100, Role: domain.RoleVendor, Email: ptr.Ptr("owner@example.com")}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	assert.Nil(t, resp.Booking.CustomerUserID)
	assert.Nil(t, resp.Booking.CustomerEmail)
	assert.Equal(t, int64(0), resp.Booking.Deposit)

	req.CollectDeposit = true
	resp, err = f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingPayment, resp.Booking.Status)
	assert.Equal(t, int64(100), resp.PaymentIntent.Metadata["createdByUserId"])
}

func TestExecute_ManualRequiresOwner(t *testing.T) {
	f := newFixture(Options{})
	req := onlineRequest()
	req.Source = domain.SourceManual
	req.VendorID = 1
	req.Identity = &domain.Identity{UserID: 200, Role: domain.RoleVendor}

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)

	req.Identity.UserID = 100
	req.VendorID = 2
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	req.Identity = nil
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_SlotChecks(t *testing.T) {
	f := newFixture(Options{})
	req := onlineRequest()
	req.StartAt = slotStart.Add(15 * time.Minute)

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, ErrConflict)

	f.slots.slots = []domain.Slot{{Start: slotStart, End: slotStart.Add(90 * time.Minute)}}
	_, err = f.uc.Execute(context.Background(), onlineRequest())
	assert.ErrorIs(t, err, ErrSlotDurationMismatch)

	assert.Empty(t, f.bookings.created)
}

func TestExecute_AllocatorConflict(t *testing.T) {
	f := newFixture(Options{})
	f.allocator.err = allocator.ErrSlotUnavailable

	_, err := f.uc.Execute(context.Background(), onlineRequest())
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.bookings.created)
	assert.Empty(t, f.lifecycle.emitted)

	f.allocator.err = errors.New("connection reset")
	_, err = f.uc.Execute(context.Background(), onlineRequest())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_LostSerializationRaceIsConflict(t *testing.T) {
	f := newFixture(Options{})
	f.uc.txManager = lostRaceTx{}

	resp, err := f.uc.Execute(context.Background(), onlineRequest())
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Zero(t, f.lifecycle.committed)
}

func TestExecute_GiftCardCoversDeposit(t *testing.T) {
	f := newFixture(Options{})
	f.giftCards.balance = 5000
	req := onlineRequest()
	req.GiftCardCode = ptr.Ptr("gift-abc")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	assert.Equal(t, int64(0), resp.Booking.Deposit)
	assert.Equal(t, int64(5000), resp.Booking.Balance)
	assert.Equal(t, int64(3000), resp.GiftCard.AppliedDeposit)
	assert.Equal(t, int64(2000), resp.GiftCard.AppliedBalance)
	assert.Equal(t, int64(5000), resp.Booking.GiftCardApplied)
	assert.Equal(t, int64(10000), resp.Booking.Price)
	assert.True(t, resp.Booking.AmountsConsistent())
	assert.Equal(t, []int64{resp.Booking.ID}, f.giftCards.redeemed)
	assert.Nil(t, resp.PaymentIntent)
}

func TestExecute_GiftCardRejected(t *testing.T) {
	f := newFixture(Options{})
	f.giftCards.err = giftcards.ErrGiftCardUnusable
	req := onlineRequest()
	req.GiftCardCode = ptr.Ptr("gift-abc")

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrGiftCardRejected)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []string{"gift-abc"}, f.giftCards.settled)

	f.giftCards.err = giftcards.ErrGiftCardNotFound
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrGiftCardNotFound)
}

func TestExecute_Rejections(t *testing.T) {
	f := newFixture(Options{})

	req := onlineRequest()
	req.CustomerName = "   "
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = onlineRequest()
	req.StartAt = time.Time{}
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.catalog.vendors[1].Status = domain.VendorStatusPending
	_, err = f.uc.Execute(context.Background(), onlineRequest())
	assert.ErrorIs(t, err, ErrVendorNotBookable)

	f.catalog.vendors[1].Status = domain.VendorStatusVerified
	f.catalog.services[7].BasePrice = 0
	_, err = f.uc.Execute(context.Background(), onlineRequest())
	assert.ErrorIs(t, err, ErrInvalidPrice)

	f.catalog.services[7].BasePrice = 100
	f.catalog.services[7].IsActive = false
	_, err = f.uc.Execute(context.Background(), onlineRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_InitializesCheckout(t *testing.T) {
	f := newFixture(Options{InitializeCheckout: true, PaystackPublicKey: "pk_test"})
	f.gateway.enabled = true
	req := onlineRequest()
	req.CustomerEmail = ptr.Ptr("guest@example.com")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Checkout.AuthorizationURL)
	assert.Equal(t, "https://checkout/"+resp.Booking.Reference, *resp.Checkout.AuthorizationURL)
	assert.Equal(t, "pk_test", resp.Checkout.PublicKey)

	f.gateway.err = paystack.ErrServiceDegraded
	resp, err = f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.Checkout.AuthorizationURL)
	assert.Equal(t, domain.StatusAwaitingPayment, resp.Booking.Status)

	// без email сессия не создается
	resp, err = f.uc.Execute(context.Background(), onlineRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Checkout.AuthorizationURL)
	assert.Equal(t, 2, f.gateway.calls)
}

func TestExecute_CalendarWarningsDoNotFail(t *testing.T) {
	f := newFixture(Options{})
	f.lifecycle.warnings = []string{"calendar sync failed: boom"}

	resp, err := f.uc.Execute(context.Background(), onlineRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"calendar sync failed: boom"}, resp.Warnings)
}
