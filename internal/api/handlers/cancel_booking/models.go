package cancel_booking

import (
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(identity domain.Identity, bookingID int64) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		Identity:  identity,
		BookingID: bookingID,
		Reason:    r.Reason,
	}
}
