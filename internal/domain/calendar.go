package domain

import "time"

// CalendarOwnerType tells whose calendar an entry belongs to
type CalendarOwnerType string

const (
	CalendarOwnerVendor   CalendarOwnerType = "VENDOR"
	CalendarOwnerCustomer CalendarOwnerType = "CUSTOMER"
)

// CalendarEntry is a derived occupancy record keyed by (BookingID, OwnerType)
type CalendarEntry struct {
	ID        int64
	BookingID int64
	OwnerType CalendarOwnerType
	OwnerID   int64 // vendor id or customer user id
	VendorID  int64
	ServiceID int64
	StartsAt  time.Time
	EndsAt    time.Time
	Status    BookingStatus
	UpdatedAt time.Time
}
