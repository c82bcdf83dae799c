package get_vendor_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability"
)

const (
	msgInvalidVendorID = "некорректный ID вендора"
	msgVendorNotFound  = "вендор не найден"
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

// Handle GET /api/v1/vendors/{vendorId}/availability
// Публичный эндпоинт: недельное расписание вендора
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/availability - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	result, err := h.service.GetWeekly(r.Context(), vendorID)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrVendorNotFound):
			h.logger.Warn("GET /vendors/{id}/availability - Vendor not found: vendor_id=%d", vendorID)
			handlers.RespondNotFound(w, msgVendorNotFound)

		default:
			h.logger.Error("GET /vendors/{id}/availability - Failed to get availability: vendor_id=%d, error=%v",
				vendorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /vendors/{id}/availability - Availability retrieved successfully: vendor_id=%d, windows=%d",
		vendorID, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, result)
}
