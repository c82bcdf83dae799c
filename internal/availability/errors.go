package availability

import "errors"

var (
	// ErrInvalidWindow возвращается при некорректном недельном окне (день недели, минуты, start >= end)
	ErrInvalidWindow = errors.New("availability: invalid weekly window")

	// ErrOverlappingWindows возвращается, если окна одного дня пересекаются
	ErrOverlappingWindows = errors.New("availability: weekly windows overlap")

	// ErrInvalidOverride возвращается при некорректном override (start >= end, длительность > 7 дней, неизвестный тип)
	ErrInvalidOverride = errors.New("availability: invalid override")

	// ErrInvalidServiceTiming возвращается при некорректной длительности услуги или буфера
	ErrInvalidServiceTiming = errors.New("availability: invalid service timing")

	// ErrInvalidRange возвращается при некорректном диапазоне дат
	ErrInvalidRange = errors.New("availability: invalid date range")
)
