package manage_overrides

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability/models"
)

const (
	msgInvalidVendorID    = "некорректный ID вендора"
	msgInvalidOverrideID  = "некорректный ID исключения"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRange       = "параметры from и to обязательны"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgVendorNotFound     = "вендор не найден"
	msgOverrideNotFound   = "исключение не найдено"
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

// Create POST /api/v1/vendors/{vendorId}/overrides
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const route = "POST /vendors/{id}/overrides"

	vendorID, userID, ok := h.vendorAndUser(w, r, route)
	if !ok {
		return
	}

	var req CreateOverrideRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	override, err := h.service.CreateOverride(r.Context(), req.ToServiceRequest(userID, vendorID))
	if err != nil {
		h.respondError(w, route, vendorID, userID, err)
		return
	}

	h.logger.Info("%s - Override created successfully: vendor_id=%d, override_id=%d, kind=%s",
		route, vendorID, override.ID, override.Kind)
	handlers.RespondJSON(w, http.StatusCreated, override)
}

// List GET /api/v1/vendors/{vendorId}/overrides?from&to
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const route = "GET /vendors/{id}/overrides"

	vendorID, userID, ok := h.vendorAndUser(w, r, route)
	if !ok {
		return
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil || from == nil {
		h.logger.Warn("%s - Invalid from: vendor_id=%d", route, vendorID)
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil || to == nil {
		h.logger.Warn("%s - Invalid to: vendor_id=%d", route, vendorID)
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}

	result, err := h.service.ListOverrides(r.Context(), &models.ListOverridesRequest{
		UserID:   userID,
		VendorID: vendorID,
		From:     *from,
		To:       *to,
	})
	if err != nil {
		h.respondError(w, route, vendorID, userID, err)
		return
	}

	h.logger.Info("%s - Overrides retrieved successfully: vendor_id=%d, count=%d", route, vendorID, len(result.Overrides))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/vendors/{vendorId}/overrides/{overrideId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const route = "DELETE /vendors/{id}/overrides/{overrideId}"

	vendorID, userID, ok := h.vendorAndUser(w, r, route)
	if !ok {
		return
	}

	overrideID, err := handlers.PathID(r, "overrideId")
	if err != nil {
		h.logger.Warn("%s - Invalid override ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidOverrideID)
		return
	}

	err = h.service.DeleteOverride(r.Context(), &models.DeleteOverrideRequest{
		UserID:     userID,
		VendorID:   vendorID,
		OverrideID: overrideID,
	})
	if err != nil {
		h.respondError(w, route, vendorID, userID, err)
		return
	}

	h.logger.Info("%s - Override deleted successfully: vendor_id=%d, override_id=%d", route, vendorID, overrideID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) vendorAndUser(w http.ResponseWriter, r *http.Request, route string) (int64, int64, bool) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("%s - Invalid vendor ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return 0, 0, false
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}
	return vendorID, userID, true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, vendorID, userID int64, err error) {
	switch {
	case errors.Is(err, availability.ErrVendorNotFound):
		h.logger.Warn("%s - Vendor not found: vendor_id=%d", route, vendorID)
		handlers.RespondNotFound(w, msgVendorNotFound)

	case errors.Is(err, availability.ErrOverrideNotFound):
		h.logger.Warn("%s - Override not found: vendor_id=%d", route, vendorID)
		handlers.RespondNotFound(w, msgOverrideNotFound)

	case errors.Is(err, availability.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: vendor_id=%d, user_id=%d", route, vendorID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, availability.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: vendor_id=%d, error=%v", route, vendorID, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: vendor_id=%d, error=%v", route, vendorID, err)
		handlers.RespondInternalError(w)
	}
}
