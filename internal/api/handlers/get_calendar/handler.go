package get_calendar

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

const (
	msgInvalidVendorID = "некорректный ID вендора"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgInvalidRange    = "параметры from и to обязательны, from должен быть раньше to"
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

// HandleCustomer GET /api/v1/me/calendar?from&to
func (h *Handler) HandleCustomer(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("GET /me/calendar - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	from, to, ok := parseRange(r)
	if !ok {
		h.logger.Warn("GET /me/calendar - Invalid range: user_id=%d", identity.UserID)
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}

	result, err := h.service.CustomerCalendar(r.Context(), identity, from, to)
	h.respond(w, "GET /me/calendar", identity.UserID, result, err)
}

// HandleVendor GET /api/v1/vendors/{vendorId}/calendar?from&to
func (h *Handler) HandleVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("GET /vendors/{id}/calendar - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("GET /vendors/{id}/calendar - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	from, to, ok := parseRange(r)
	if !ok {
		h.logger.Warn("GET /vendors/{id}/calendar - Invalid range: vendor_id=%d", vendorID)
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}

	result, err := h.service.VendorCalendar(r.Context(), identity, vendorID, from, to)
	h.respond(w, "GET /vendors/{id}/calendar", identity.UserID, result, err)
}

func (h *Handler) respond(w http.ResponseWriter, route string, userID int64, result *models.CalendarResponse, err error) {
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrVendorNotFound):
			h.logger.Warn("%s - Vendor not found: user_id=%d", route, userID)
			handlers.RespondNotFound(w, msgVendorNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: user_id=%d", route, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("%s - Invalid range: user_id=%d, error=%v", route, userID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("%s - Failed to get calendar: user_id=%d, error=%v", route, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Calendar retrieved successfully: user_id=%d, count=%d", route, userID, len(result.Entries))
	handlers.RespondJSON(w, http.StatusOK, result)
}

func parseRange(r *http.Request) (time.Time, time.Time, bool) {
	from, err := handlers.QueryTime(r, "from")
	if err != nil || from == nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil || to == nil {
		return time.Time{}, time.Time{}, false
	}
	return *from, *to, true
}
