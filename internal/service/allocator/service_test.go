package allocator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

type fakeBookings struct {
	bookings []*domain.Booking
}

func (f *fakeBookings) ListActiveOverlapping(_ context.Context, q domain.OverlapQuery) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.VendorID != q.VendorID || !b.IsActive() || !b.Overlaps(q.Start, q.End) {
			continue
		}
		if q.ExcludeBookingID != nil && b.ID == *q.ExcludeBookingID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type fakeSeats struct {
	seats []*domain.Seat
}

func (f *fakeSeats) ListEligibleActive(_ context.Context, vendorID, serviceID int64) ([]*domain.Seat, error) {
	out := make([]*domain.Seat, 0)
	for _, s := range f.seats {
		if s.VendorID == vendorID && s.IsActive && s.IsEligibleFor(serviceID) {
			out = append(out, s)
		}
	}
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var base = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func hm(h, m int) time.Time {
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func booking(id int64, start, end time.Time, status domain.BookingStatus, seatID *int64) *domain.Booking {
	return &domain.Booking{ID: id, VendorID: 1, ServiceID: 10, ScheduledStart: start, ScheduledEnd: end, Status: status, SeatID: seatID}
}

func TestAllocate_UnsegmentedVendorConflictAndRelease(t *testing.T) {
	a := booking(1, hm(10, 0), hm(11, 0), domain.StatusConfirmed, nil)
	bookings := &fakeBookings{bookings: []*domain.Booking{a}}
	svc := NewService(bookings, &fakeSeats{}, nopLogger{})

	req := Request{VendorID: 1, ServiceID: 10, Start: hm(10, 30), End: hm(11, 30)}

	_, err := svc.Allocate(context.Background(), req)
	require.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	a.Status = domain.StatusCancelled
	alloc, err := svc.Allocate(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, alloc.SeatID)
}

func TestAllocate_AdjacentBookingsDoNotConflict(t *testing.T) {
	bookings := &fakeBookings{bookings: []*domain.Booking{
		booking(1, hm(10, 0), hm(11, 0), domain.StatusConfirmed, nil),
	}}
	svc := NewService(bookings, &fakeSeats{}, nopLogger{})

	_, err := svc.Allocate(context.Background(), Request{VendorID: 1, ServiceID: 10, Start: hm(11, 0), End: hm(12, 0)})
	assert.NoError(t, err)
}

func TestAllocate_RescheduleExcludesOwnBooking(t *testing.T) {
	bookings := &fakeBookings{bookings: []*domain.Booking{
		booking(1, hm(10, 0), hm(11, 0), domain.StatusAwaitingPayment, nil),
	}}
	svc := NewService(bookings, &fakeSeats{}, nopLogger{})

	_, err := svc.Allocate(context.Background(), Request{
		VendorID: 1, ServiceID: 10, Start: hm(10, 30), End: hm(11, 30), ExcludeBookingID: ptr.Ptr(int64(1)),
	})
	assert.NoError(t, err)
}

func TestAllocate_PicksFirstFreeSeatInCreationOrder(t *testing.T) {
	seats := &fakeSeats{seats: []*domain.Seat{
		{ID: 100, VendorID: 1, Capacity: 1, IsActive: true, StaffID: ptr.Ptr(int64(7))},
		{ID: 200, VendorID: 1, Capacity: 1, IsActive: true, StaffID: ptr.Ptr(int64(8))},
	}}
	bookings := &fakeBookings{bookings: []*domain.Booking{
		booking(1, hm(10, 0), hm(11, 0), domain.StatusConfirmed, ptr.Ptr(int64(100))),
	}}
	svc := NewService(bookings, seats, nopLogger{})

	alloc, err := svc.Allocate(context.Background(), Request{VendorID: 1, ServiceID: 10, Start: hm(10, 0), End: hm(11, 0)})
	require.NoError(t, err)
	require.NotNil(t, alloc.SeatID)
	assert.Equal(t, int64(200), *alloc.SeatID)
	assert.Equal(t, int64(8), *alloc.StaffID)

	bookings.bookings = append(bookings.bookings, booking(2, hm(10, 0), hm(11, 0), domain.StatusPending, ptr.Ptr(int64(200))))
	_, err = svc.Allocate(context.Background(), Request{VendorID: 1, ServiceID: 10, Start: hm(10, 0), End: hm(11, 0)})
	assert.ErrorIs(t, err, ErrNoSeatsAvailable)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAllocate_SeatCapacity(t *testing.T) {
	seats := &fakeSeats{seats: []*domain.Seat{
		{ID: 100, VendorID: 1, Capacity: 2, IsActive: true},
	}}
	bookings := &fakeBookings{bookings: []*domain.Booking{
		booking(1, hm(10, 0), hm(11, 0), domain.StatusConfirmed, ptr.Ptr(int64(100))),
	}}
	svc := NewService(bookings, seats, nopLogger{})
	req := Request{VendorID: 1, ServiceID: 10, Start: hm(10, 0), End: hm(11, 0), RequestedSeatID: ptr.Ptr(int64(100))}

	_, err := svc.Allocate(context.Background(), req)
	require.NoError(t, err)

	bookings.bookings = append(bookings.bookings, booking(2, hm(10, 0), hm(11, 0), domain.StatusConfirmed, ptr.Ptr(int64(100))))
	_, err = svc.Allocate(context.Background(), req)
	assert.ErrorIs(t, err, ErrSeatAtCapacity)
}

func TestAllocate_ZeroCapacityCountsAsOne(t *testing.T) {
	seats := &fakeSeats{seats: []*domain.Seat{{ID: 100, VendorID: 1, Capacity: 0, IsActive: true}}}
	bookings := &fakeBookings{bookings: []*domain.Booking{
		booking(1, hm(10, 0), hm(11, 0), domain.StatusConfirmed, ptr.Ptr(int64(100))),
	}}
	svc := NewService(bookings, seats, nopLogger{})

	_, err := svc.Allocate(context.Background(), Request{VendorID: 1, ServiceID: 10, Start: hm(10, 0), End: hm(11, 0)})
	assert.ErrorIs(t, err, ErrNoSeatsAvailable)
}

func TestAllocate_RequestedSeatNotEligible(t *testing.T) {
	seats := &fakeSeats{seats: []*domain.Seat{
		{ID: 100, VendorID: 1, Capacity: 1, IsActive: true, ServiceIDs: []int64{99}},
		{ID: 200, VendorID: 1, Capacity: 1, IsActive: true},
	}}
	svc := NewService(&fakeBookings{}, seats, nopLogger{})

	_, err := svc.Allocate(context.Background(), Request{
		VendorID: 1, ServiceID: 10, Start: hm(10, 0), End: hm(11, 0), RequestedSeatID: ptr.Ptr(int64(100)),
	})
	assert.ErrorIs(t, err, ErrSeatNotEligible)
}

func TestAllocate_LegacySeatlessBookingBlocksSegmentedVendor(t *testing.T) {
	seats := &fakeSeats{seats: []*domain.Seat{
		{ID: 100, VendorID: 1, Capacity: 3, IsActive: true},
	}}
	bookings := &fakeBookings{bookings: []*domain.Booking{
		booking(1, hm(10, 0), hm(11, 0), domain.StatusConfirmed, nil),
	}}
	svc := NewService(bookings, seats, nopLogger{})

	_, err := svc.Allocate(context.Background(), Request{VendorID: 1, ServiceID: 10, Start: hm(10, 0), End: hm(11, 0)})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestAllocate_NoSeatEverExceedsCapacity(t *testing.T) {
	seats := &fakeSeats{seats: []*domain.Seat{
		{ID: 100, VendorID: 1, Capacity: 2, IsActive: true},
		{ID: 200, VendorID: 1, Capacity: 1, IsActive: true},
	}}
	bookings := &fakeBookings{}
	svc := NewService(bookings, seats, nopLogger{})

	granted := 0
	for i := 0; i < 10; i++ {
		alloc, err := svc.Allocate(context.Background(), Request{VendorID: 1, ServiceID: 10, Start: hm(9, 0), End: hm(10, 0)})
		if err != nil {
			assert.ErrorIs(t, err, ErrConflict)
			continue
		}
		granted++
		bookings.bookings = append(bookings.bookings, booking(int64(i+1), hm(9, 0), hm(10, 0), domain.StatusConfirmed, alloc.SeatID))
	}
	assert.Equal(t, 3, granted)
}
