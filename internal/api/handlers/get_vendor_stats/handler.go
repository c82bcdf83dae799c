package get_vendor_stats

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
)

const (
	msgInvalidVendorID = "некорректный ID вендора"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgVendorNotFound  = "вендор не найден"
	msgForbidden       = "доступ запрещен"
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

// Handle GET /api/v1/vendors/{vendorId}/stats
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/stats - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("GET /vendors/{id}/stats - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	stats, err := h.service.GetVendorStats(r.Context(), identity, vendorID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrVendorNotFound):
			h.logger.Warn("GET /vendors/{id}/stats - Vendor not found: vendor_id=%d", vendorID)
			handlers.RespondNotFound(w, msgVendorNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /vendors/{id}/stats - Access denied: vendor_id=%d, user_id=%d", vendorID, identity.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /vendors/{id}/stats - Failed to get stats: vendor_id=%d, error=%v", vendorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /vendors/{id}/stats - Stats retrieved successfully: vendor_id=%d, total=%d", vendorID, stats.Total)
	handlers.RespondJSON(w, http.StatusOK, stats)
}
