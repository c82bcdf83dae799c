package paystack

import "strings"

// Типы событий вебхука
const (
	EventChargeSuccess  = "charge.success"
	EventChargeFailed   = "charge.failed"
	EventChargeReversed = "charge.reversed"
)

// SignatureHeader заголовок с HMAC-SHA512 подписью тела вебхука
const SignatureHeader = "x-paystack-signature"

// Event тело вебхука
type Event struct {
	Event string     `json:"event"`
	Data  *EventData `json:"data"`
}

// EventData данные платежа из вебхука
type EventData struct {
	Reference string                 `json:"reference"`
	Amount    *int64                 `json:"amount"`
	Currency  string                 `json:"currency"`
	Status    string                 `json:"status"`
	PaidAt    *string                `json:"paid_at"`
	Channel   *string                `json:"channel"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// IsSuccess событие успешной оплаты
func (e *Event) IsSuccess() bool {
	return e.Event == EventChargeSuccess
}

// IsFailure событие неуспешной или отозванной оплаты
func (e *Event) IsFailure() bool {
	return e.Event == EventChargeFailed || e.Event == EventChargeReversed
}

// NormalizedCurrency валюта в верхнем регистре, def если провайдер ее не прислал
func (d *EventData) NormalizedCurrency(def string) string {
	c := strings.TrimSpace(d.Currency)
	if c == "" {
		c = def
	}
	return strings.ToUpper(c)
}

// InitializeRequest запрос на создание checkout-сессии
type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"` // минимальные единицы валюты
	Currency    string                 `json:"currency"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Channels    []string               `json:"channels,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// InitializeResponse результат создания checkout-сессии
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// envelope общий формат ответа Paystack API
type envelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    *InitializeResponse `json:"data"`
}

// ChannelsFor каналы оплаты для валюты: для GHS добавляется mobile money
func ChannelsFor(currency string) []string {
	if strings.EqualFold(currency, "GHS") {
		return []string{"mobile_money", "card"}
	}
	return nil
}
