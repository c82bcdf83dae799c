package reconcile_payment

import "errors"

var (
	// ErrInvalidSignature возвращается, когда подпись не совпала или секрет не настроен
	ErrInvalidSignature = errors.New("reconcile_payment: invalid webhook signature")

	// ErrMalformedEvent возвращается, когда тело вебхука не разбирается
	ErrMalformedEvent = errors.New("reconcile_payment: malformed webhook payload")

	// ErrInternal возвращается при внутренних ошибках, провайдер повторит доставку
	ErrInternal = errors.New("reconcile_payment: internal error")
)
