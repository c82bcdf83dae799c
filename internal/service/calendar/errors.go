package calendar

import "errors"

var (
	// ErrInvalidRange возвращается, когда from >= to
	ErrInvalidRange = errors.New("calendar: invalid range")

	// ErrSync возвращается, когда проекцию бронирования не удалось записать
	ErrSync = errors.New("calendar: sync failed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("calendar: internal error")
)
