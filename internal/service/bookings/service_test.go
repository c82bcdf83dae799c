package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

func TestCancel_ByCustomerRecordsActorAndRefunds(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(48*time.Hour)))

	resp, err := f.svc.Cancel(context.Background(), &models.CancelBookingRequest{
		Identity: customerIdentity(), BookingID: 1, Reason: ptr.Ptr("  plans changed "),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.Equal(t, "CUSTOMER", *resp.CancelledBy)
	assert.Equal(t, "plans changed", *resp.CancellationReason)
	assert.Equal(t, []int64{1}, f.gift.refunded)
	assert.Equal(t, []domain.EventType{domain.EventBookingCancelled}, f.events.types())
	assert.Len(t, f.events.flushed, 1)
	assert.Equal(t, []int64{1}, f.calendar.synced)
	assert.Empty(t, resp.Warnings)
}

func TestCancel_ByVendorOwner(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(48*time.Hour)))

	resp, err := f.svc.Cancel(context.Background(), &models.CancelBookingRequest{Identity: vendorIdentity(), BookingID: 1})
	require.NoError(t, err)
	assert.Equal(t, "VENDOR", *resp.CancelledBy)
	assert.Nil(t, resp.CancellationReason)
}

func TestCancel_NoticeThreshold(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(24*time.Hour-time.Minute)))
	f.add(confirmedAt(2, now.Add(24*time.Hour)))

	_, err := f.svc.Cancel(context.Background(), &models.CancelBookingRequest{Identity: customerIdentity(), BookingID: 1})
	assert.ErrorIs(t, err, ErrPolicyWindow)
	assert.Equal(t, domain.StatusConfirmed, f.bookings.items[1].Status)

	_, err = f.svc.Cancel(context.Background(), &models.CancelBookingRequest{Identity: customerIdentity(), BookingID: 2})
	assert.NoError(t, err)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	f := newFixture()
	b := f.add(confirmedAt(1, now.Add(48*time.Hour)))
	b.Status = domain.StatusCancelled

	_, err := f.svc.Cancel(context.Background(), &models.CancelBookingRequest{Identity: customerIdentity(), BookingID: 1})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_StrangerIsDenied(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(48*time.Hour)))

	_, err := f.svc.Cancel(context.Background(), &models.CancelBookingRequest{
		Identity: domain.Identity{UserID: 999, Role: domain.RoleCustomer}, BookingID: 1,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.Cancel(context.Background(), &models.CancelBookingRequest{Identity: customerIdentity(), BookingID: 42})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_CalendarFailureIsSurfacedAsWarning(t *testing.T) {
	f := newFixture()
	f.calendar.fail = true
	f.add(confirmedAt(1, now.Add(48*time.Hour)))

	resp, err := f.svc.Cancel(context.Background(), &models.CancelBookingRequest{Identity: customerIdentity(), BookingID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, f.bookings.items[1].Status)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "calendar")
}

func TestComplete_VendorOnlyFromConfirmed(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(-2*time.Hour)))

	_, err := f.svc.Complete(context.Background(), customerIdentity(), 1)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.Complete(context.Background(), vendorIdentity(), 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	require.NotNil(t, resp.CompletedAt)

	_, err = f.svc.Complete(context.Background(), vendorIdentity(), 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkNoShow(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(-2*time.Hour)))

	resp, err := f.svc.MarkNoShow(context.Background(), vendorIdentity(), 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusNoShow), resp.Status)
	assert.Equal(t, []domain.EventType{domain.EventBookingNoShow}, f.events.types())
}

func TestMarkPaid_ManualAwaitingPayment(t *testing.T) {
	f := newFixture()
	b := f.add(confirmedAt(1, now.Add(2*time.Hour)))
	b.Status = domain.StatusAwaitingPayment
	b.Source = domain.SourceManual
	b.Deposit = 5000
	b.Balance = 5000
	f.payments.intents[1] = &domain.PaymentIntent{ID: 7, BookingID: ptr.Ptr(int64(1)), Status: domain.IntentRequiresPaymentMethod}

	resp, err := f.svc.MarkPaid(context.Background(), vendorIdentity(), 1)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, int64(0), resp.Balance)
	assert.Equal(t, int64(5000), resp.BalanceSettled)
	assert.True(t, f.bookings.items[1].AmountsConsistent())
	assert.NotNil(t, resp.PaidAt)
	assert.Equal(t, domain.IntentSucceeded, f.payments.intents[1].Status)
	assert.Equal(t, []domain.EventType{domain.EventBookingConfirmed}, f.events.types())
}

func TestMarkPaid_RejectsOnlineBooking(t *testing.T) {
	f := newFixture()
	b := f.add(confirmedAt(1, now.Add(2*time.Hour)))
	b.Status = domain.StatusAwaitingPayment

	_, err := f.svc.MarkPaid(context.Background(), vendorIdentity(), 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusAwaitingPayment, f.bookings.items[1].Status)
}

func TestClaim_MatchesEmailFromProfile(t *testing.T) {
	f := newFixture()
	guest := confirmedAt(1, now.Add(48*time.Hour))
	guest.CustomerUserID = nil
	guest.CustomerEmail = ptr.Ptr("ama@example.com")
	f.add(guest)
	other := confirmedAt(2, now.Add(48*time.Hour))
	other.CustomerUserID = nil
	other.CustomerEmail = ptr.Ptr("kofi@example.com")
	f.add(other)

	resp, err := f.svc.Claim(context.Background(), &models.ClaimBookingsRequest{
		Identity: domain.Identity{UserID: 300, Email: ptr.Ptr("Ama@Example.com ")},
	})
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(300), *f.bookings.items[1].CustomerUserID)
	assert.Nil(t, f.bookings.items[2].CustomerUserID)
	assert.Equal(t, []int64{1}, f.calendar.synced)
}

func TestClaim_NeedsEmailOrPhone(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Claim(context.Background(), &models.ClaimBookingsRequest{Identity: domain.Identity{UserID: 300}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetByID_Visibility(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(48*time.Hour)))

	_, err := f.svc.GetByID(context.Background(), customerIdentity(), 1)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), vendorIdentity(), 1)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), domain.Identity{UserID: 5}, 1)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestListVendorBookings_Validation(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(48*time.Hour)))

	_, err := f.svc.ListVendorBookings(context.Background(), &models.VendorBookingsRequest{Identity: vendorIdentity(), VendorID: vendorID, Take: 101})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ListVendorBookings(context.Background(), &models.VendorBookingsRequest{Identity: vendorIdentity(), VendorID: vendorID, Statuses: []string{"DONE"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ListVendorBookings(context.Background(), &models.VendorBookingsRequest{Identity: customerIdentity(), VendorID: vendorID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.ListVendorBookings(context.Background(), &models.VendorBookingsRequest{Identity: vendorIdentity(), VendorID: vendorID, Statuses: []string{"CONFIRMED"}})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
}

func TestCustomerBookings_Scopes(t *testing.T) {
	f := newFixture()
	f.add(confirmedAt(1, now.Add(48*time.Hour)))
	past := f.add(confirmedAt(2, now.Add(-48*time.Hour)))
	past.Status = domain.StatusCompleted

	upcoming, err := f.svc.ListCustomerBookings(context.Background(), customerIdentity(), ScopeUpcoming)
	require.NoError(t, err)
	require.Len(t, upcoming.Bookings, 1)
	assert.Equal(t, int64(1), upcoming.Bookings[0].ID)

	history, err := f.svc.ListCustomerBookings(context.Background(), customerIdentity(), ScopeHistory)
	require.NoError(t, err)
	require.Len(t, history.Bookings, 1)
	assert.Equal(t, int64(2), history.Bookings[0].ID)

	_, err = f.svc.ListCustomerBookings(context.Background(), customerIdentity(), "later")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetVendorStats_AllStatusesPresent(t *testing.T) {
	f := newFixture()
	done := f.add(confirmedAt(1, now.Add(-48*time.Hour)))
	done.Status = domain.StatusCompleted

	resp, err := f.svc.GetVendorStats(context.Background(), vendorIdentity(), vendorID)
	require.NoError(t, err)
	assert.Len(t, resp.Counts, 6)
	assert.Equal(t, 1, resp.Counts["COMPLETED"])
	assert.Equal(t, 0, resp.Counts["NO_SHOW"])
	assert.Equal(t, int64(10000), resp.CompletedSales)
}
