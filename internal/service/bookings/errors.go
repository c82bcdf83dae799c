package bookings

import (
	"errors"
	"fmt"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrVendorNotFound возвращается, когда вендор не найден
	ErrVendorNotFound = errors.New("bookings: vendor not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("bookings: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrPolicyWindow возвращается, когда до начала бронирования меньше минимального срока
	ErrPolicyWindow = errors.New("bookings: too close to the scheduled start")

	// ErrInvalidTransition возвращается, когда переход статуса запрещен
	ErrInvalidTransition = errors.New("bookings: invalid status transition")

	// ErrAlreadyCancelled возвращается при повторной отмене
	ErrAlreadyCancelled = fmt.Errorf("%w: booking already cancelled", ErrInvalidTransition)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
