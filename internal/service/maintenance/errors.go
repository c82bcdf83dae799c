package maintenance

import "errors"

var (
	// ErrUnknownJob возвращается для неизвестного имени обхода
	ErrUnknownJob = errors.New("maintenance: unknown job")

	// ErrSweep возвращается, когда обход завершился с ошибками
	ErrSweep = errors.New("maintenance: sweep failed")
)
