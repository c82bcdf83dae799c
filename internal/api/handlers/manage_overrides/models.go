package manage_overrides

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability/models"
)

// CreateOverrideRequest HTTP request model
type CreateOverrideRequest struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Kind     string    `json:"kind"` // BLOCK | EXTEND
	Reason   *string   `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreateOverrideRequest) ToServiceRequest(userID, vendorID int64) *models.CreateOverrideRequest {
	return &models.CreateOverrideRequest{
		UserID:   userID,
		VendorID: vendorID,
		StartsAt: r.StartsAt.UTC(),
		EndsAt:   r.EndsAt.UTC(),
		Kind:     r.Kind,
		Reason:   r.Reason,
	}
}
