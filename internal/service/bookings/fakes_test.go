package bookings

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

type fakeBookings struct {
	items map[int64]*domain.Booking
}

func (f *fakeBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) Update(_ context.Context, b *domain.Booking) error {
	cp := *b
	f.items[b.ID] = &cp
	return nil
}

func (f *fakeBookings) ListByVendor(_ context.Context, filter domain.VendorBookingsFilter) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range f.sorted() {
		if b.VendorID == filter.VendorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListUpcomingByVendor(_ context.Context, vendorID int64, now time.Time, limit int) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range f.sorted() {
		if b.VendorID == vendorID && b.IsActive() && !b.ScheduledStart.Before(now) && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListByCustomer(_ context.Context, userID int64, upcoming bool, now time.Time) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range f.sorted() {
		if b.CustomerUserID == nil || *b.CustomerUserID != userID {
			continue
		}
		isUpcoming := b.IsActive() && !b.ScheduledStart.Before(now)
		if isUpcoming == upcoming {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListClaimable(_ context.Context, email, phone *string, limit int) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range f.sorted() {
		if b.CustomerUserID != nil || len(out) >= limit {
			continue
		}
		emailMatch := email != nil && b.CustomerEmail != nil && *b.CustomerEmail == *email
		phoneMatch := phone != nil && b.CustomerPhone != nil && *b.CustomerPhone == *phone
		if emailMatch || phoneMatch {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookings) GetVendorStats(_ context.Context, vendorID int64) (*domain.VendorStats, error) {
	stats := &domain.VendorStats{VendorID: vendorID, CountsByStatus: map[domain.BookingStatus]int{}}
	for _, b := range f.items {
		if b.VendorID != vendorID {
			continue
		}
		stats.CountsByStatus[b.Status]++
		stats.Total++
		if b.Status == domain.StatusCompleted {
			stats.CompletedSales += b.Price
		}
	}
	return stats, nil
}

func (f *fakeBookings) sorted() []*domain.Booking {
	out := make([]*domain.Booking, 0, len(f.items))
	for _, b := range f.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeVendors struct{}

func (fakeVendors) GetVendorByID(_ context.Context, id int64) (*domain.Vendor, error) {
	if id == vendorID {
		return &domain.Vendor{ID: vendorID, OwnerUserID: ptr.Ptr(vendorOwner), Status: domain.VendorStatusVerified}, nil
	}
	return nil, serviceRepo.ErrVendorNotFound
}

type fakePayments struct {
	intents map[int64]*domain.PaymentIntent
}

func (f *fakePayments) GetLatestByBookingID(_ context.Context, bookingID int64) (*domain.PaymentIntent, error) {
	i, ok := f.intents[bookingID]
	if !ok {
		return nil, paymentRepo.ErrIntentNotFound
	}
	return i, nil
}

func (f *fakePayments) Update(_ context.Context, intent *domain.PaymentIntent) error {
	f.intents[*intent.BookingID] = intent
	return nil
}

type fakeGiftCards struct {
	refunded []int64
}

func (f *fakeGiftCards) Refund(_ context.Context, bookingID int64) (int64, error) {
	f.refunded = append(f.refunded, bookingID)
	return 0, nil
}

type fakeEvents struct {
	recorded []*domain.BookingEvent
	flushed  []*domain.BookingEvent
}

func (f *fakeEvents) Record(_ context.Context, e *domain.BookingEvent) (*domain.BookingEvent, error) {
	e.ID = int64(len(f.recorded) + 1)
	f.recorded = append(f.recorded, e)
	return e, nil
}

func (f *fakeEvents) Flush(_ context.Context, events []*domain.BookingEvent) {
	f.flushed = append(f.flushed, events...)
}

func (f *fakeEvents) types() []domain.EventType {
	out := make([]domain.EventType, 0, len(f.recorded))
	for _, e := range f.recorded {
		out = append(out, e.Type)
	}
	return out
}

type fakeCalendar struct {
	synced []int64
	fail   bool
}

func (f *fakeCalendar) SyncBooking(_ context.Context, b *domain.Booking) error {
	if f.fail {
		return errors.New("calendar down")
	}
	f.synced = append(f.synced, b.ID)
	return nil
}

func (f *fakeCalendar) SyncBookings(ctx context.Context, bookings []*domain.Booking) error {
	var errs []error
	for _, b := range bookings {
		if err := f.SyncBooking(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fakeCalendar) ListForVendor(context.Context, int64, time.Time, time.Time) ([]*domain.CalendarEntry, error) {
	return []*domain.CalendarEntry{}, nil
}

func (f *fakeCalendar) ListForCustomer(context.Context, int64, time.Time, time.Time) ([]*domain.CalendarEntry, error) {
	return []*domain.CalendarEntry{}, nil
}

type passTx struct{}

func (passTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
func (passTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (passTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const (
	vendorID    int64 = 1
	vendorOwner int64 = 100
	customerID  int64 = 200
)

var now = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	bookings *fakeBookings
	payments *fakePayments
	gift     *fakeGiftCards
	events   *fakeEvents
	calendar *fakeCalendar
}

func newFixture() *fixture {
	f := &fixture{
		bookings: &fakeBookings{items: map[int64]*domain.Booking{}},
		payments: &fakePayments{intents: map[int64]*domain.PaymentIntent{}},
		gift:     &fakeGiftCards{},
		events:   &fakeEvents{},
		calendar: &fakeCalendar{},
	}
	lifecycle := NewLifecycle(f.bookings, f.gift, f.events, f.calendar, nil, 24, nopLogger{})
	f.svc = NewService(f.bookings, fakeVendors{}, f.payments, lifecycle, f.calendar, passTx{}, fixedTime{now}, nopLogger{})
	return f
}

func (f *fixture) add(b *domain.Booking) *domain.Booking {
	if b.VendorID == 0 {
		b.VendorID = vendorID
	}
	f.bookings.items[b.ID] = b
	return b
}

func confirmedAt(id int64, start time.Time) *domain.Booking {
	return &domain.Booking{
		ID:             id,
		VendorID:       vendorID,
		ServiceID:      10,
		CustomerUserID: ptr.Ptr(customerID),
		CustomerName:   "Ama",
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
		Price:          10000,
		Currency:       "GHS",
		Status:         domain.StatusConfirmed,
		Source:         domain.SourceOnline,
	}
}

func vendorIdentity() domain.Identity {
	return domain.Identity{UserID: vendorOwner, Role: domain.RoleVendor}
}

func customerIdentity() domain.Identity {
	return domain.Identity{UserID: customerID, Role: domain.RoleCustomer}
}
