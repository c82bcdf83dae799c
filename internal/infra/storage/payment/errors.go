package payment

import "errors"

var (
	// ErrIntentNotFound возвращается, когда платежное намерение не найдено
	ErrIntentNotFound = errors.New("payment.repository: payment intent not found")

	// ErrDuplicateReference возвращается при повторном providerRef
	ErrDuplicateReference = errors.New("payment.repository: duplicate provider reference")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("payment.repository: failed to scan row")

	// ErrMetadata возвращается при ошибке (де)сериализации metadata
	ErrMetadata = errors.New("payment.repository: invalid metadata")
)
