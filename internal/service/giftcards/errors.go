package giftcards

import "errors"

var (
	// ErrInvalidCode возвращается для пустого кода после нормализации
	ErrInvalidCode = errors.New("giftcards: invalid gift card code")

	// ErrGiftCardNotFound возвращается, когда карта не найдена
	ErrGiftCardNotFound = errors.New("giftcards: gift card not found")

	// ErrGiftCardUnusable возвращается, когда карту нельзя применить к бронированию
	ErrGiftCardUnusable = errors.New("giftcards: gift card cannot be used")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("giftcards: internal error")
)
