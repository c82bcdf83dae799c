package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// ValidateWeeklyWindows проверяет набор недельных окон перед заменой
// Окна одного дня не должны пересекаться (граничащие окна допустимы)
func ValidateWeeklyWindows(windows []domain.WeeklyWindow) error {
	byDay := make(map[int][]domain.WeeklyWindow, domain.DaysPerWeek)

	for i, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek >= domain.DaysPerWeek {
			return fmt.Errorf("%w: window #%d has dayOfWeek %d, expected 0..6", ErrInvalidWindow, i, w.DayOfWeek)
		}
		if w.StartMinute < 0 || w.EndMinute > domain.MinutesPerDay {
			return fmt.Errorf("%w: window #%d is outside 00:00-24:00", ErrInvalidWindow, i)
		}
		if w.StartMinute >= w.EndMinute {
			return fmt.Errorf("%w: window #%d start must be before end", ErrInvalidWindow, i)
		}
		byDay[w.DayOfWeek] = append(byDay[w.DayOfWeek], w)
	}

	for dow, dayWindows := range byDay {
		sort.Slice(dayWindows, func(i, j int) bool {
			return dayWindows[i].StartMinute < dayWindows[j].StartMinute
		})
		for i := 0; i+1 < len(dayWindows); i++ {
			if dayWindows[i].EndMinute > dayWindows[i+1].StartMinute {
				return fmt.Errorf("%w: day %d has overlapping windows", ErrOverlappingWindows, dow)
			}
		}
	}

	return nil
}

// ValidateOverride проверяет override и возвращает нормализованную причину
func ValidateOverride(startsAt, endsAt time.Time, kind domain.OverrideKind, reason *string) (*string, error) {
	if startsAt.IsZero() || endsAt.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidOverride)
	}
	if !startsAt.Before(endsAt) {
		return nil, fmt.Errorf("%w: start must be before end", ErrInvalidOverride)
	}
	if endsAt.Sub(startsAt) > domain.MaxOverrideDurationDays*day {
		return nil, fmt.Errorf("%w: override cannot exceed %d days", ErrInvalidOverride, domain.MaxOverrideDurationDays)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidOverride, kind)
	}

	if reason == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > domain.MaxOverrideReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidOverride, domain.MaxOverrideReasonLength)
	}
	return &trimmed, nil
}

// ValidateServiceTiming проверяет длительность (15-480) и буфер (0-180) услуги
func ValidateServiceTiming(durationMinutes, bufferMinutes int) error {
	if durationMinutes < domain.MinServiceDurationMinutes || durationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidServiceTiming, domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes)
	}
	if bufferMinutes < domain.MinServiceBufferMinutes || bufferMinutes > domain.MaxServiceBufferMinutes {
		return fmt.Errorf("%w: buffer must be between %d and %d minutes",
			ErrInvalidServiceTiming, domain.MinServiceBufferMinutes, domain.MaxServiceBufferMinutes)
	}
	return nil
}

// ValidateRange проверяет количество дней в запросе слотов
func ValidateRange(days, maxDays int) error {
	if days < 1 || days > maxDays {
		return fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidRange, maxDays)
	}
	return nil
}
