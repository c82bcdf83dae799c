package giftcard

import "errors"

var (
	// ErrGiftCardNotFound возвращается, когда подарочная карта не найдена
	ErrGiftCardNotFound = errors.New("giftcard.repository: gift card not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("giftcard.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("giftcard.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("giftcard.repository: failed to scan row")
)
