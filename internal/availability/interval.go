package availability

import (
	"sort"
	"time"
)

// Interval полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsEmpty проверяет, что интервал пустой (Start >= End)
func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

// Overlaps проверяет пересечение интервалов
// Граничащие интервалы (конец одного = начало другого) не пересекаются
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Clip обрезает интервал по границам bounds
// Возвращает false, если пересечения нет
func (i Interval) Clip(bounds Interval) (Interval, bool) {
	start := i.Start
	if bounds.Start.After(start) {
		start = bounds.Start
	}
	end := i.End
	if bounds.End.Before(end) {
		end = bounds.End
	}
	clipped := Interval{Start: start, End: end}
	if clipped.IsEmpty() {
		return Interval{}, false
	}
	return clipped, true
}

// Subtract вычитает block из каждого интервала множества
//
// Для каждого интервала возможны четыре случая:
// - block полностью покрывает интервал → интервал удаляется
// - block перекрывает начало → остается хвост [block.End, End)
// - block перекрывает конец → остается голова [Start, block.Start)
// - block внутри интервала → интервал делится на два
func Subtract(set []Interval, block Interval) []Interval {
	if block.IsEmpty() {
		return set
	}

	result := make([]Interval, 0, len(set)+1)
	for _, iv := range set {
		if !iv.Overlaps(block) {
			result = append(result, iv)
			continue
		}

		if iv.Start.Before(block.Start) {
			result = append(result, Interval{Start: iv.Start, End: block.Start})
		}
		if block.End.Before(iv.End) {
			result = append(result, Interval{Start: block.End, End: iv.End})
		}
	}
	return result
}

// Union добавляет интервал к множеству, сливая его с пересекающимися интервалами
func Union(set []Interval, add Interval) []Interval {
	if add.IsEmpty() {
		return set
	}
	withAdded := make([]Interval, 0, len(set)+1)
	withAdded = append(withAdded, set...)
	return Merge(append(withAdded, add))
}

// Merge сортирует множество и сливает пересекающиеся интервалы
// Граничащие интервалы не сливаются: границы окон, заданные вендором, сохраняются
func Merge(set []Interval) []Interval {
	sorted := Normalize(set)
	if len(sorted) == 0 {
		return sorted
	}

	result := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, iv := range sorted[1:] {
		// После сортировки iv.Start >= current.Start, пересечение = iv.Start < current.End
		if iv.Start.Before(current.End) {
			if iv.End.After(current.End) {
				current.End = iv.End
			}
			continue
		}
		result = append(result, current)
		current = iv
	}
	return append(result, current)
}

// Normalize отбрасывает пустые интервалы и сортирует по началу (затем по концу)
func Normalize(set []Interval) []Interval {
	result := make([]Interval, 0, len(set))
	for _, iv := range set {
		if !iv.IsEmpty() {
			result = append(result, iv)
		}
	}
	sort.SliceStable(result, func(a, b int) bool {
		if result[a].Start.Equal(result[b].Start) {
			return result[a].End.Before(result[b].End)
		}
		return result[a].Start.Before(result[b].Start)
	})
	return result
}
