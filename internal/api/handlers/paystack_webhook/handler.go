package paystack_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
	reconcilePayment "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/reconcile_payment"
)

const (
	maxWebhookBytes = 1 << 20

	msgInvalidBody      = "некорректное тело вебхука"
	msgInvalidSignature = "некорректная подпись вебхука"
)

// WebhookResponse подтверждение обработки вебхука
type WebhookResponse struct {
	Received  bool   `json:"received"`
	Event     string `json:"event,omitempty"`
	Reference string `json:"reference,omitempty"`
	Outcome   string `json:"outcome"`
}

type Handler struct {
	useCase ReconcileUseCase
	logger  Logger
}

func NewHandler(useCase ReconcileUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/paystack/webhook
// Подпись проверяется по сырому телу, поэтому тело читается без декодирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil || len(body) == 0 {
		h.logger.Warn("POST /payments/paystack/webhook - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &reconcilePayment.Request{
		Signature: r.Header.Get(paystack.SignatureHeader),
		RawBody:   body,
	})
	if err != nil {
		switch {
		case errors.Is(err, reconcilePayment.ErrInvalidSignature):
			h.logger.Warn("POST /payments/paystack/webhook - Invalid signature")
			handlers.RespondUnauthorized(w, msgInvalidSignature)

		case errors.Is(err, reconcilePayment.ErrMalformedEvent):
			h.logger.Warn("POST /payments/paystack/webhook - Malformed payload: %v", err)
			handlers.RespondBadRequest(w, msgInvalidBody)

		default:
			// 5xx: провайдер повторит доставку
			h.logger.Error("POST /payments/paystack/webhook - Failed to process webhook: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/paystack/webhook - Webhook processed: event=%s, reference=%s, outcome=%s",
		result.Event, result.Reference, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, &WebhookResponse{
		Received:  true,
		Event:     result.Event,
		Reference: result.Reference,
		Outcome:   result.Outcome,
	})
}
