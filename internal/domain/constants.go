package domain

// Service timing validation constants
const (
	MinServiceDurationMinutes = 15
	MaxServiceDurationMinutes = 480 // 8 hours
	MinServiceBufferMinutes   = 0
	MaxServiceBufferMinutes   = 180
)

// Availability validation constants
const (
	DaysPerWeek             = 7
	MinutesPerDay           = 24 * 60
	MaxOverrideDurationDays = 7
	MaxOverrideReasonLength = 500
)

// Booking policy constants
const (
	DefaultMinModificationNoticeHours = 24
	DefaultDepositPercent             = 100
	MaxPlatformMarkupBps              = 5000
	BasisPointsDenominator            = 10000
	MaxCancellationReasonLength       = 500
	MaxNotesLength                    = 500
	ReferencePrefix                   = "book_"
	ReferenceHexLength                = 24
	MaxClaimBatch                     = 20
)

// Pagination limits
const (
	DefaultVendorBookingsTake = 20
	MaxVendorBookingsTake     = 100
	DefaultUpcomingLimit      = 10
	MaxUpcomingLimit          = 50
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// PaymentProviderPaystack is the only payment provider wired in
const PaymentProviderPaystack = "PAYSTACK"

// ActiveStatuses lists the statuses that occupy capacity
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusAwaitingPayment,
	StatusConfirmed,
}

// InactiveStatuses lists the terminal statuses that free capacity
var InactiveStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}
