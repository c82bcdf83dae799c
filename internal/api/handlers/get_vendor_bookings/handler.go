package get_vendor_bookings

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
	msgInvalidParams   = "некорректные параметры запроса"
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

// Handle GET /api/v1/vendors/{vendorId}/bookings
// Query params: status, from, to, take, skip (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/bookings - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("GET /vendors/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := ToServiceRequest(r, identity, vendorID)
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис сам проверит, что пользователь владелец вендора
	result, err := h.service.ListVendorBookings(r.Context(), serviceReq)
	if err != nil {
		h.respondError(w, "GET /vendors/{id}/bookings", vendorID, identity.UserID, err)
		return
	}

	h.logger.Info("GET /vendors/{id}/bookings - Bookings retrieved successfully: vendor_id=%d, count=%d",
		vendorID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleUpcoming GET /api/v1/vendors/{vendorId}/bookings/upcoming?limit=N
func (h *Handler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/bookings/upcoming - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("GET /vendors/{id}/bookings/upcoming - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	limit, err := handlers.QueryInt(r, "limit", 0)
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/bookings/upcoming - Invalid limit: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ListVendorUpcoming(r.Context(), identity, vendorID, limit)
	if err != nil {
		h.respondError(w, "GET /vendors/{id}/bookings/upcoming", vendorID, identity.UserID, err)
		return
	}

	h.logger.Info("GET /vendors/{id}/bookings/upcoming - Bookings retrieved successfully: vendor_id=%d, count=%d",
		vendorID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, vendorID, userID int64, err error) {
	switch {
	case errors.Is(err, bookings.ErrVendorNotFound):
		h.logger.Warn("%s - Vendor not found: vendor_id=%d", route, vendorID)
		handlers.RespondNotFound(w, msgVendorNotFound)

	case errors.Is(err, bookings.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: vendor_id=%d, user_id=%d", route, vendorID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, bookings.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: vendor_id=%d, error=%v", route, vendorID, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed to get bookings: vendor_id=%d, error=%v", route, vendorID, err)
		handlers.RespondInternalError(w)
	}
}
