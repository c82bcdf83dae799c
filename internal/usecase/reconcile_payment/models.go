package reconcile_payment

// Результаты обработки вебхука
const (
	OutcomeConfirmed        = "confirmed"
	OutcomeAlreadySettled   = "already_settled"
	OutcomeRequiresRefund   = "requires_refund"
	OutcomeGiftCardActive   = "gift_card_activated"
	OutcomeSupplyOrderPaid  = "supply_order_paid"
	OutcomeDuplicate        = "duplicate"
	OutcomeUnknownReference = "unknown_reference"
	OutcomeAmountMismatch   = "amount_mismatch"
	OutcomeCurrencyMismatch = "currency_mismatch"
	OutcomeFailed           = "failed"
	OutcomeIgnored          = "ignored"
	OutcomeRejected         = "rejected"
)

// Причины отказа, сохраняемые в lastError намерения
const (
	ReasonAmountMismatch   = "Amount mismatch"
	ReasonCurrencyMismatch = "Currency mismatch"
)

// Request сырой вебхук провайдера
type Request struct {
	Signature string
	RawBody   []byte
}

// Response результат обработки; любой ответ без ошибки подтверждается провайдеру 200
type Response struct {
	Event     string
	Reference string
	Outcome   string
	Warnings  []string
}
