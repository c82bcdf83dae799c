package update_vendor_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability"
)

const (
	msgInvalidVendorID    = "некорректный ID вендора"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgVendorNotFound     = "вендор не найден"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/vendors/{vendorId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("PUT /vendors/{id}/availability - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /vendors/{id}/availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /vendors/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ReplaceWeekly(r.Context(), req.ToServiceRequest(userID, vendorID))
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrVendorNotFound):
			h.logger.Warn("PUT /vendors/{id}/availability - Vendor not found: vendor_id=%d", vendorID)
			handlers.RespondNotFound(w, msgVendorNotFound)

		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("PUT /vendors/{id}/availability - Access denied: vendor_id=%d, user_id=%d", vendorID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("PUT /vendors/{id}/availability - Invalid data: vendor_id=%d, error=%v", vendorID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PUT /vendors/{id}/availability - Failed to update availability: vendor_id=%d, error=%v",
				vendorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /vendors/{id}/availability - Availability updated successfully: vendor_id=%d, windows=%d",
		vendorID, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, result)
}
