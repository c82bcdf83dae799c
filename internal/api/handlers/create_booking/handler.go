package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStart       = "некорректное время начала, ожидается RFC3339"
	msgInvalidVendorID    = "некорректный ID вендора"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные бронирования"
	msgSlotNotAvailable   = "выбранный слот больше недоступен"
	msgServiceNotFound    = "услуга не найдена"
	msgVendorNotBookable  = "вендор пока не принимает бронирования"
	msgGiftCardNotFound   = "подарочная карта не найдена"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
// Онлайн-бронирование, авторизация необязательна
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var identity *domain.Identity
	if id, ok := middleware.GetIdentity(r.Context()); ok {
		identity = &id
	}
	h.create(w, r, "POST /bookings", domain.SourceOnline, 0, identity)
}

// HandleManual POST /api/v1/vendors/{vendorId}/bookings
// Ручное бронирование владельцем вендора
func (h *Handler) HandleManual(w http.ResponseWriter, r *http.Request) {
	vendorID, err := handlers.PathID(r, "vendorId")
	if err != nil {
		h.logger.Warn("POST /vendors/{id}/bookings - Invalid vendor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVendorID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("POST /vendors/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	h.create(w, r, "POST /vendors/{id}/bookings", domain.SourceManual, vendorID, &identity)
}

func (h *Handler) create(
	w http.ResponseWriter,
	r *http.Request,
	route string,
	source domain.BookingSource,
	vendorID int64,
	identity *domain.Identity,
) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(source, vendorID, identity)
	if err != nil {
		h.logger.Warn("%s - Invalid start time: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrConflict):
			h.logger.Warn("%s - Slot not available: service_id=%d, start=%s", route, req.ServiceID, req.StartAt)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("%s - Service not found: service_id=%d", route, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrGiftCardNotFound):
			h.logger.Warn("%s - Gift card not found: service_id=%d", route, req.ServiceID)
			handlers.RespondNotFound(w, msgGiftCardNotFound)

		case errors.Is(err, createBooking.ErrVendorNotBookable):
			h.logger.Warn("%s - Vendor not bookable: service_id=%d", route, req.ServiceID)
			handlers.RespondBadRequest(w, msgVendorNotBookable)

		case errors.Is(err, createBooking.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: vendor_id=%d", route, vendorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", route, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("%s - Failed to create booking: service_id=%d, error=%v", route, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Booking created successfully: booking_id=%d, reference=%s, status=%s",
		route, result.Booking.ID, result.Booking.Reference, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
