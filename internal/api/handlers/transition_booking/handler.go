package transition_booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgInvalidStatus    = "переход недоступен для текущего статуса бронирования"
)

type transitionFunc func(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error)

// Handler переходы статуса, доступные владельцу вендора
type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Complete PATCH /api/v1/bookings/{bookingId}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "PATCH /bookings/{id}/complete", h.service.Complete)
}

// NoShow PATCH /api/v1/bookings/{bookingId}/no-show
func (h *Handler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "PATCH /bookings/{id}/no-show", h.service.MarkNoShow)
}

// MarkPaid PATCH /api/v1/bookings/{bookingId}/mark-paid
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "PATCH /bookings/{id}/mark-paid", h.service.MarkPaid)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, transition transitionFunc) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := transition(r.Context(), identity, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound), errors.Is(err, bookings.ErrVendorNotFound):
			h.logger.Warn("%s - Booking not found: booking_id=%d", route, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: booking_id=%d, user_id=%d", route, bookingID, identity.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("%s - Invalid transition: booking_id=%d, error=%v", route, bookingID, err)
			handlers.RespondConflict(w, msgInvalidStatus)

		default:
			h.logger.Error("%s - Failed to update booking: booking_id=%d, error=%v", route, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Booking updated successfully: booking_id=%d, status=%s", route, bookingID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
