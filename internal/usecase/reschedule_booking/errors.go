package reschedule_booking

import (
	"errors"
	"fmt"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrServiceNotFound возвращается, когда услуга бронирования больше не существует
	ErrServiceNotFound = errors.New("reschedule_booking: service not found")

	// ErrAccessDenied возвращается, когда пользователь не клиент и не владелец вендора
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrPolicyWindow возвращается, когда до начала бронирования меньше минимального срока
	ErrPolicyWindow = errors.New("reschedule_booking: too close to the scheduled start")

	// ErrInvalidTransition возвращается для неактивных бронирований
	ErrInvalidTransition = errors.New("reschedule_booking: only active bookings can be rescheduled")

	// ErrConflict общий класс конфликтов
	ErrConflict = errors.New("reschedule_booking: conflict")

	// ErrSlotNotAvailable возвращается, когда нового слота нет в расписании
	ErrSlotNotAvailable = fmt.Errorf("%w: selected slot is no longer available", ErrConflict)

	// ErrSlotDurationMismatch возвращается, когда длительность слота не совпадает с услугой
	ErrSlotDurationMismatch = fmt.Errorf("%w: selected slot duration no longer matches the service", ErrConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
