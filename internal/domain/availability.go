package domain

import "time"

// WeeklyWindow is a recurring availability range within one day of the week
// DayOfWeek follows time.Weekday: 0 = Sunday
type WeeklyWindow struct {
	ID          int64
	VendorID    int64
	DayOfWeek   int
	StartMinute int
	EndMinute   int
}

// OverrideKind tells whether an override removes or adds time
type OverrideKind string

const (
	OverrideBlock  OverrideKind = "BLOCK"
	OverrideExtend OverrideKind = "EXTEND"
)

// IsValid returns true for known override kinds
func (k OverrideKind) IsValid() bool {
	return k == OverrideBlock || k == OverrideExtend
}

// AvailabilityOverride is a one-off change to the weekly schedule
type AvailabilityOverride struct {
	ID        int64
	VendorID  int64
	StartsAt  time.Time
	EndsAt    time.Time
	Kind      OverrideKind
	Reason    *string
	CreatedAt time.Time
}

// Slot is a concrete bookable interval [Start, End)
type Slot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the slot length
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
