package get_user_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidScope  = "scope должен быть upcoming или history"
)

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

// Handle GET /api/v1/me/bookings?scope=upcoming|history
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("GET /me/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	scope := bookings.CustomerScope(r.URL.Query().Get("scope"))

	result, err := h.service.ListCustomerBookings(r.Context(), identity, scope)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /me/bookings - Invalid scope: user_id=%d, scope=%s", identity.UserID, scope)
			handlers.RespondBadRequest(w, msgInvalidScope)

		default:
			h.logger.Error("GET /me/bookings - Failed to get bookings: user_id=%d, error=%v", identity.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /me/bookings - Bookings retrieved successfully: user_id=%d, count=%d",
		identity.UserID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
