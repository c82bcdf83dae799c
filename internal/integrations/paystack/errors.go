package paystack

import "errors"

var (
	// ErrInvalidSignature возвращается, когда подпись вебхука не совпадает
	ErrInvalidSignature = errors.New("paystack: invalid webhook signature")

	// ErrNotConfigured возвращается, когда секретный ключ не задан
	ErrNotConfigured = errors.New("paystack: secret key is not configured")

	// ErrMalformedEvent возвращается при некорректном теле вебхука
	ErrMalformedEvent = errors.New("paystack: malformed webhook event")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paystack client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от провайдера
	ErrInvalidResponse = errors.New("paystack client: invalid response")

	// ErrServiceDegraded возвращается, когда провайдер недоступен
	// Бронирование при этом остается в силе, оплату можно начать позже по reference
	ErrServiceDegraded = errors.New("paystack unavailable: checkout not initialized")
)
