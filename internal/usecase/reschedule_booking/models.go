package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request модель запроса на перенос бронирования
type Request struct {
	Identity  domain.Identity
	BookingID int64
	StartAt   time.Time
	SeatID    *int64
}

// Response модель ответа с перенесенным бронированием
type Response struct {
	Booking  *domain.Booking
	Warnings []string
}
