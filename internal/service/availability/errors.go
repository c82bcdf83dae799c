package availability

import "errors"

var (
	// ErrVendorNotFound возвращается, когда вендор не найден
	ErrVendorNotFound = errors.New("availability: vendor not found")

	// ErrOverrideNotFound возвращается, когда override не найден
	ErrOverrideNotFound = errors.New("availability: override not found")

	// ErrAccessDenied возвращается, когда пользователь не владелец вендора
	ErrAccessDenied = errors.New("availability: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
