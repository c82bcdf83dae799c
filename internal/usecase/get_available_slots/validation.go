package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxDays int) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.Days != 0 {
		if err := availability.ValidateRange(req.Days, maxDays); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	return nil
}

// checkBookable проверяет, что услуга и вендор принимают бронирования
func checkBookable(service *domain.Service, vendor *domain.Vendor) error {
	if !service.IsActive {
		return ErrServiceNotFound
	}
	if !vendor.IsBookable() {
		return ErrVendorNotBookable
	}
	return nil
}
