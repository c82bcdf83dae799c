package events

import "errors"

var (
	// ErrRecord возвращается, если событие не удалось записать в outbox
	ErrRecord = errors.New("events: failed to record event")

	// ErrRelay возвращается при ошибке повторной публикации
	ErrRelay = errors.New("events: failed to relay events")
)
