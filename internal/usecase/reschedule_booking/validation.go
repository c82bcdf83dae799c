package reschedule_booking

import (
	"fmt"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: provide a valid start time", ErrInvalidInput)
	}
	if req.SeatID != nil && *req.SeatID <= 0 {
		return fmt.Errorf("%w: seatId must be positive", ErrInvalidInput)
	}
	return nil
}

// canModify клиент бронирования, владелец вендора или администратор
func canModify(vendor *domain.Vendor, booking *domain.Booking, identity domain.Identity) bool {
	if vendor.IsOwnedBy(identity.UserID) || identity.Role == domain.RoleAdmin {
		return true
	}
	return booking.CustomerUserID != nil && *booking.CustomerUserID == identity.UserID
}
