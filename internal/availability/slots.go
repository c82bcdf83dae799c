package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// TileSlots нарезает слоты по сетке каждого дня
//
// Сетка строится от начала каждого anchor-интервала: [cursor, cursor+duration), шаг duration+buffer,
// пока cursor+duration <= anchor.End. Слот попадает в результат, только если целиком лежит
// внутри одного из доступных интервалов дня (т.е. не задет BLOCK) и внутри [rangeStart, rangeEnd).
func TileSlots(days []DayIntervals, duration, buffer time.Duration, rangeStart, rangeEnd time.Time) []domain.Slot {
	slots := make([]domain.Slot, 0)
	if duration <= 0 || buffer < 0 {
		return slots
	}

	step := duration + buffer
	for _, d := range days {
		for _, anchor := range d.Anchors {
			for cursor := anchor.Start; !cursor.Add(duration).After(anchor.End); cursor = cursor.Add(step) {
				slot := Interval{Start: cursor, End: cursor.Add(duration)}
				if slot.Start.Before(rangeStart) || slot.End.After(rangeEnd) {
					continue
				}
				if !containedInAny(slot, d.Intervals) {
					continue
				}
				slots = append(slots, domain.Slot{Start: slot.Start, End: slot.End})
			}
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
	return slots
}

// containedInAny проверяет, что slot целиком лежит внутри одного из интервалов
func containedInAny(slot Interval, intervals []Interval) bool {
	for _, iv := range intervals {
		if !slot.Start.Before(iv.Start) && !slot.End.After(iv.End) {
			return true
		}
	}
	return false
}

// Input вход генератора слотов
type Input struct {
	Weekly          []domain.WeeklyWindow
	Overrides       []domain.AvailabilityOverride
	StartDate       time.Time
	Days            int
	DurationMinutes int
	BufferMinutes   int
}

// GenerateSlots строит доступные слоты услуги на диапазон [начало суток StartDate, +Days суток)
func GenerateSlots(in Input) []domain.Slot {
	r := Range(in.StartDate, in.Days)
	daily := BuildDailyIntervals(in.Weekly, in.Overrides, r.Start, in.Days)

	return TileSlots(
		daily,
		time.Duration(in.DurationMinutes)*time.Minute,
		time.Duration(in.BufferMinutes)*time.Minute,
		r.Start,
		r.End,
	)
}

// FindSlot ищет слот с точным совпадением начала
func FindSlot(slots []domain.Slot, start time.Time) (domain.Slot, bool) {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return s, true
		}
	}
	return domain.Slot{}, false
}
