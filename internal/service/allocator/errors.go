package allocator

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict общий класс отказа: слот или место заняты, можно повторить со свежими слотами
	ErrConflict = errors.New("allocator: conflict")

	// ErrSlotUnavailable слот уже занят другим активным бронированием
	ErrSlotUnavailable = fmt.Errorf("%w: slot no longer available", ErrConflict)

	// ErrSeatNotEligible запрошенное место не подходит для услуги
	ErrSeatNotEligible = fmt.Errorf("%w: requested seat is not available for this service", ErrConflict)

	// ErrSeatAtCapacity запрошенное место заполнено
	ErrSeatAtCapacity = fmt.Errorf("%w: requested seat is no longer free", ErrConflict)

	// ErrNoSeatsAvailable все подходящие места заполнены
	ErrNoSeatsAvailable = fmt.Errorf("%w: no seats are available for this time", ErrConflict)

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("allocator: internal error")
)
