package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
)

const (
	msgInvalidServiceID  = "некорректный ID услуги"
	msgInvalidDays       = "некорректное количество дней"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidParams     = "некорректные параметры запроса"
	msgServiceNotFound   = "услуга не найдена"
	msgVendorNotBookable = "вендор пока не принимает бронирования"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/slots
// Query params: startDate (YYYY-MM-DD, по умолчанию сегодня), days (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathID(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /services/{id}/slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	days, err := handlers.QueryInt(r, "days", 0)
	if err != nil {
		h.logger.Warn("GET /services/{id}/slots - Invalid days: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDays)
		return
	}

	useCaseReq, err := ToUseCaseRequest(serviceID, r.URL.Query().Get("startDate"), days)
	if err != nil {
		h.logger.Warn("GET /services/{id}/slots - Invalid start date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /services/{id}/slots - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrVendorNotBookable):
			h.logger.Warn("GET /services/{id}/slots - Vendor not bookable: service_id=%d", serviceID)
			handlers.RespondBadRequest(w, msgVendorNotBookable)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /services/{id}/slots - Invalid parameters: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /services/{id}/slots - Failed to get slots: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/slots - Slots retrieved successfully: service_id=%d, slots_count=%d",
		serviceID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
