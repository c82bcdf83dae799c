package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

const day = 24 * time.Hour

// StartOfDayUTC возвращает начало суток (UTC) для момента t
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Range возвращает [начало суток startDate, +days суток) в UTC
func Range(startDate time.Time, days int) Interval {
	start := StartOfDayUTC(startDate)
	return Interval{Start: start, End: start.Add(time.Duration(days) * day)}
}

// DayIntervals доступность одного календарного дня
type DayIntervals struct {
	Day time.Time // начало суток, UTC

	// Anchors окна после применения EXTEND, но до BLOCK.
	// От их начала строится сетка слотов, поэтому BLOCK не сдвигает сетку.
	Anchors []Interval

	// Intervals итоговые доступные интервалы (после BLOCK), отсортированы и не пересекаются
	Intervals []Interval
}

// BuildDailyIntervals строит доступность по дням для диапазона [rangeStart, rangeStart+days)
//
// Для каждого дня:
//  1. берутся недельные окна с совпадающим днем недели и переводятся в абсолютное время
//  2. все EXTEND overrides, пересекающие день, обрезаются по границам дня и объединяются с окнами
//  3. затем все BLOCK overrides, пересекающие день, обрезаются и вычитаются
//
// EXTEND применяется раньше BLOCK, поэтому в области пересечения BLOCK всегда побеждает.
// Если у вендора нет ни одного недельного окна, доступность пустая независимо от overrides.
// Функция чистая: одинаковый вход всегда дает одинаковый выход.
func BuildDailyIntervals(
	weekly []domain.WeeklyWindow,
	overrides []domain.AvailabilityOverride,
	rangeStart time.Time,
	days int,
) []DayIntervals {
	if len(weekly) == 0 || days <= 0 {
		return []DayIntervals{}
	}

	byDay := groupWindowsByDay(weekly)
	extends, blocks := splitOverrides(overrides)

	start := StartOfDayUTC(rangeStart)
	result := make([]DayIntervals, 0, days)

	for d := 0; d < days; d++ {
		dayStart := start.Add(time.Duration(d) * day)
		bounds := Interval{Start: dayStart, End: dayStart.Add(day)}

		// 1. Базовые окна дня
		base := make([]Interval, 0, len(byDay[int(dayStart.Weekday())]))
		for _, w := range byDay[int(dayStart.Weekday())] {
			base = append(base, Interval{
				Start: dayStart.Add(time.Duration(w.StartMinute) * time.Minute),
				End:   dayStart.Add(time.Duration(w.EndMinute) * time.Minute),
			})
		}
		current := Merge(base)

		// 2. EXTEND
		for _, o := range extends {
			if clipped, ok := (Interval{Start: o.StartsAt, End: o.EndsAt}).Clip(bounds); ok {
				current = Union(current, clipped)
			}
		}

		anchors := current

		// 3. BLOCK
		for _, o := range blocks {
			if clipped, ok := (Interval{Start: o.StartsAt, End: o.EndsAt}).Clip(bounds); ok {
				current = Subtract(current, clipped)
			}
		}

		result = append(result, DayIntervals{
			Day:       dayStart,
			Anchors:   anchors,
			Intervals: Normalize(current),
		})
	}

	return result
}

// groupWindowsByDay группирует валидные окна по дню недели
// Невалидные окна (start >= end, выход за сутки) отбрасываются: запись таких окон запрещена валидацией
func groupWindowsByDay(weekly []domain.WeeklyWindow) map[int][]domain.WeeklyWindow {
	byDay := make(map[int][]domain.WeeklyWindow, domain.DaysPerWeek)
	for _, w := range weekly {
		if w.DayOfWeek < 0 || w.DayOfWeek >= domain.DaysPerWeek {
			continue
		}
		if w.StartMinute < 0 || w.EndMinute > domain.MinutesPerDay || w.StartMinute >= w.EndMinute {
			continue
		}
		byDay[w.DayOfWeek] = append(byDay[w.DayOfWeek], w)
	}
	for dow := range byDay {
		windows := byDay[dow]
		sort.SliceStable(windows, func(i, j int) bool {
			return windows[i].StartMinute < windows[j].StartMinute
		})
	}
	return byDay
}

// splitOverrides разделяет overrides на EXTEND и BLOCK, сохраняя порядок источника
func splitOverrides(overrides []domain.AvailabilityOverride) (extends, blocks []domain.AvailabilityOverride) {
	for _, o := range overrides {
		if !o.StartsAt.Before(o.EndsAt) {
			continue
		}
		switch o.Kind {
		case domain.OverrideExtend:
			extends = append(extends, o)
		case domain.OverrideBlock:
			blocks = append(blocks, o)
		}
	}
	return extends, blocks
}
