package domain

import "time"

// VendorStatus is the onboarding status of a vendor
type VendorStatus string

const (
	VendorStatusPending  VendorStatus = "PENDING"
	VendorStatusVerified VendorStatus = "VERIFIED"
	VendorStatusRejected VendorStatus = "REJECTED"
)

// Vendor is a business offering services
type Vendor struct {
	ID          int64
	OwnerUserID *int64
	Name        string
	Status      VendorStatus
	CreatedAt   time.Time
}

// IsBookable returns true if the vendor may accept bookings
func (v *Vendor) IsBookable() bool {
	return v.Status == VendorStatusVerified && v.OwnerUserID != nil
}

// IsOwnedBy returns true if userID is the vendor owner
func (v *Vendor) IsOwnedBy(userID int64) bool {
	return v.OwnerUserID != nil && *v.OwnerUserID == userID
}

// Service is something a vendor sells in time slots
type Service struct {
	ID              int64
	VendorID        int64
	Name            string
	BasePrice       int64 // minor currency units
	DurationMinutes int
	BufferMinutes   int
	DepositPercent  *int // nil = full prepayment
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Duration returns the service duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
