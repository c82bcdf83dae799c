package domain

import "time"

// Seat is a unit of parallel capacity within a vendor (a chair, a room, a staff slot)
type Seat struct {
	ID         int64
	VendorID   int64
	Label      string
	Capacity   int
	StaffID    *int64
	IsActive   bool
	ServiceIDs []int64 // empty = eligible for every service
	CreatedAt  time.Time
}

// EffectiveCapacity returns the capacity, treating unset values as 1
func (s *Seat) EffectiveCapacity() int {
	if s.Capacity > 0 {
		return s.Capacity
	}
	return 1
}

// IsEligibleFor returns true if the seat may host the service
func (s *Seat) IsEligibleFor(serviceID int64) bool {
	if len(s.ServiceIDs) == 0 {
		return true
	}
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
