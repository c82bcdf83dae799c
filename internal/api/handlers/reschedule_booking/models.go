package reschedule_booking

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/reschedule_booking"
)

var errMissingStart = errors.New("startAt is required")

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	StartAt string `json:"startAt"` // RFC3339
	SeatID  *int64 `json:"seatId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(identity domain.Identity, bookingID int64) (*rescheduleBooking.Request, error) {
	if r.StartAt == "" {
		return nil, errMissingStart
	}
	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		Identity:  identity,
		BookingID: bookingID,
		StartAt:   startAt.UTC(),
		SeatID:    r.SeatID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в DTO
func FromUseCaseResponse(resp *rescheduleBooking.Response) *models.BookingResponse {
	out := models.FromDomainBooking(resp.Booking)
	out.Warnings = resp.Warnings
	return out
}
