package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// normalized нормализованные контактные данные клиента
type normalized struct {
	name  string
	email *string
	phone *string
	notes *string
	code  *string
}

// validateRequest валидирует входные данные запроса и нормализует контакты
func validateRequest(req *Request) (*normalized, error) {
	if req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.StartAt.IsZero() {
		return nil, fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}

	switch req.Source {
	case domain.SourceOnline:
	case domain.SourceManual:
		if req.Identity == nil {
			return nil, fmt.Errorf("%w: manual bookings require an authenticated vendor", ErrAccessDenied)
		}
		if req.VendorID <= 0 {
			return nil, fmt.Errorf("%w: vendorId must be positive", ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	if req.SeatID != nil && *req.SeatID <= 0 {
		return nil, fmt.Errorf("%w: seatId must be positive", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	n := &normalized{
		name:  name,
		email: lower(trimmed(req.CustomerEmail)),
		phone: trimmed(req.CustomerPhone),
		notes: trimmed(req.Notes),
		code:  trimmed(req.GiftCardCode),
	}

	// Контакты из профиля авторизованного клиента
	if req.Source == domain.SourceOnline && req.Identity != nil {
		if n.email == nil {
			n.email = lower(trimmed(req.Identity.Email))
		}
		if n.phone == nil {
			n.phone = trimmed(req.Identity.Phone)
		}
	}

	if n.notes != nil && len(*n.notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return n, nil
}

// checkBookable проверяет, что услуга и вендор принимают бронирования
func checkBookable(service *domain.Service, vendor *domain.Vendor) error {
	if !service.IsActive {
		return ErrServiceNotFound
	}
	if !vendor.IsBookable() {
		return ErrVendorNotBookable
	}
	if service.BasePrice <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func lower(s *string) *string {
	if s == nil {
		return nil
	}
	l := strings.ToLower(*s)
	return &l
}
