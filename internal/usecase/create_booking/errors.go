package create_booking

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("create_booking: service not found or inactive")

	// ErrVendorNotBookable возвращается, когда вендор не подтвержден
	ErrVendorNotBookable = errors.New("create_booking: vendor is not accepting bookings")

	// ErrAccessDenied возвращается, когда ручное бронирование создает не владелец вендора
	ErrAccessDenied = errors.New("create_booking: access denied")

	// ErrConflict общий класс конфликтов: слот занят, можно повторить со свежими слотами
	ErrConflict = errors.New("create_booking: conflict")

	// ErrSlotNotAvailable возвращается, когда выбранного слота нет в расписании
	ErrSlotNotAvailable = fmt.Errorf("%w: selected slot is no longer available", ErrConflict)

	// ErrSlotDurationMismatch возвращается, когда длительность слота не совпадает с текущей длительностью услуги
	ErrSlotDurationMismatch = fmt.Errorf("%w: selected slot duration no longer matches the service", ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidPrice возвращается, когда цена услуги не положительна
	ErrInvalidPrice = fmt.Errorf("%w: service price must be greater than zero", ErrInvalidInput)

	// ErrGiftCardNotFound возвращается, когда подарочная карта не найдена
	ErrGiftCardNotFound = errors.New("create_booking: gift card not found")

	// ErrGiftCardRejected возвращается, когда карту нельзя применить
	ErrGiftCardRejected = fmt.Errorf("%w: gift card cannot be applied", ErrInvalidInput)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
