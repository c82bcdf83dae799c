package availability

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// 2026-01-05 - понедельник
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func mondayNineToFive() []domain.WeeklyWindow {
	return []domain.WeeklyWindow{{VendorID: 1, DayOfWeek: int(time.Monday), StartMinute: 9 * 60, EndMinute: 17 * 60}}
}

func starts(slots []domain.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("15:04")+"-"+s.End.Format("15:04"))
	}
	return out
}

func TestGenerateSlots_WeeklyWindowOnly(t *testing.T) {
	slots := GenerateSlots(Input{
		Weekly:          mondayNineToFive(),
		StartDate:       monday,
		Days:            1,
		DurationMinutes: 120,
		BufferMinutes:   30,
	})

	assert.Equal(t, []string{"09:00-11:00", "11:30-13:30", "14:00-16:00"}, starts(slots))
}

func TestGenerateSlots_BlockRemovesTouchedSlotOnly(t *testing.T) {
	slots := GenerateSlots(Input{
		Weekly: mondayNineToFive(),
		Overrides: []domain.AvailabilityOverride{
			{Kind: domain.OverrideBlock, StartsAt: at(11, 0), EndsAt: at(12, 0)},
		},
		StartDate:       monday,
		Days:            1,
		DurationMinutes: 120,
		BufferMinutes:   30,
	})

	assert.Equal(t, []string{"09:00-11:00", "14:00-16:00"}, starts(slots))
}

func TestGenerateSlots_NoWeeklyWindowsMeansNoSlots(t *testing.T) {
	slots := GenerateSlots(Input{
		Overrides: []domain.AvailabilityOverride{
			{Kind: domain.OverrideExtend, StartsAt: at(9, 0), EndsAt: at(12, 0)},
		},
		StartDate:       monday,
		Days:            7,
		DurationMinutes: 60,
	})

	assert.Empty(t, slots)
}

func TestGenerateSlots_ExtendAddsTimeOnOtherDay(t *testing.T) {
	// Вторник без недельных окон, но EXTEND добавляет окно
	tuesday := monday.Add(24 * time.Hour)
	slots := GenerateSlots(Input{
		Weekly: mondayNineToFive(),
		Overrides: []domain.AvailabilityOverride{
			{Kind: domain.OverrideExtend, StartsAt: tuesday.Add(10 * time.Hour), EndsAt: tuesday.Add(12 * time.Hour)},
		},
		StartDate:       tuesday,
		Days:            1,
		DurationMinutes: 60,
	})

	assert.Equal(t, []string{"10:00-11:00", "11:00-12:00"}, starts(slots))
}

func TestGenerateSlots_BlockWinsOverExtend(t *testing.T) {
	slots := GenerateSlots(Input{
		Weekly: mondayNineToFive(),
		Overrides: []domain.AvailabilityOverride{
			// BLOCK указан раньше EXTEND, но применяется после него
			{Kind: domain.OverrideBlock, StartsAt: at(17, 0), EndsAt: at(18, 0)},
			{Kind: domain.OverrideExtend, StartsAt: at(17, 0), EndsAt: at(19, 0)},
		},
		StartDate:       monday,
		Days:            1,
		DurationMinutes: 60,
	})

	got := starts(slots)
	assert.NotContains(t, got, "17:00-18:00")
	assert.Contains(t, got, "18:00-19:00")
}

func TestGenerateSlots_FullDayBlock(t *testing.T) {
	slots := GenerateSlots(Input{
		Weekly: mondayNineToFive(),
		Overrides: []domain.AvailabilityOverride{
			{Kind: domain.OverrideBlock, StartsAt: monday.Add(-time.Hour), EndsAt: monday.Add(25 * time.Hour)},
		},
		StartDate:       monday,
		Days:            1,
		DurationMinutes: 30,
	})

	assert.Empty(t, slots)
}

func TestGenerateSlots_RestrictedToRequestedRange(t *testing.T) {
	weekly := []domain.WeeklyWindow{}
	for d := 0; d < 7; d++ {
		weekly = append(weekly, domain.WeeklyWindow{DayOfWeek: d, StartMinute: 0, EndMinute: 24 * 60})
	}

	// Запрос с середины дня начинается с полуночи (начало суток UTC)
	slots := GenerateSlots(Input{
		Weekly:          weekly,
		StartDate:       at(15, 45),
		Days:            2,
		DurationMinutes: 60,
	})

	require.Len(t, slots, 48)
	assert.True(t, slots[0].Start.Equal(monday))
	assert.True(t, slots[len(slots)-1].End.Equal(monday.Add(48*time.Hour)))
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	in := Input{
		Weekly: []domain.WeeklyWindow{
			{DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 12 * 60},
			{DayOfWeek: 1, StartMinute: 13 * 60, EndMinute: 18 * 60},
			{DayOfWeek: 3, StartMinute: 8 * 60, EndMinute: 20 * 60},
		},
		Overrides: []domain.AvailabilityOverride{
			{Kind: domain.OverrideBlock, StartsAt: at(10, 0), EndsAt: at(10, 30)},
			{Kind: domain.OverrideExtend, StartsAt: at(19, 0), EndsAt: at(21, 0)},
		},
		StartDate:       monday,
		Days:            14,
		DurationMinutes: 45,
		BufferMinutes:   15,
	}

	assert.Equal(t, GenerateSlots(in), GenerateSlots(in))
}

func TestSubtract_Cases(t *testing.T) {
	window := []Interval{{Start: at(9, 0), End: at(17, 0)}}

	tests := []struct {
		name  string
		block Interval
		want  []Interval
	}{
		{
			name:  "full cover",
			block: Interval{Start: at(8, 0), End: at(18, 0)},
			want:  []Interval{},
		},
		{
			name:  "trim start",
			block: Interval{Start: at(8, 0), End: at(10, 0)},
			want:  []Interval{{Start: at(10, 0), End: at(17, 0)}},
		},
		{
			name:  "trim end",
			block: Interval{Start: at(16, 0), End: at(18, 0)},
			want:  []Interval{{Start: at(9, 0), End: at(16, 0)}},
		},
		{
			name:  "split",
			block: Interval{Start: at(12, 0), End: at(13, 0)},
			want:  []Interval{{Start: at(9, 0), End: at(12, 0)}, {Start: at(13, 0), End: at(17, 0)}},
		},
		{
			name:  "adjacent block keeps window",
			block: Interval{Start: at(17, 0), End: at(18, 0)},
			want:  []Interval{{Start: at(9, 0), End: at(17, 0)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subtract(window, tt.block))
		})
	}
}

func TestUnion_MergesOverlapsButKeepsAdjacentWindows(t *testing.T) {
	set := []Interval{{Start: at(9, 0), End: at(12, 0)}, {Start: at(14, 0), End: at(17, 0)}}

	merged := Union(set, Interval{Start: at(11, 0), End: at(15, 0)})
	assert.Equal(t, []Interval{{Start: at(9, 0), End: at(17, 0)}}, merged)

	adjacent := Union(set, Interval{Start: at(12, 0), End: at(13, 0)})
	assert.Len(t, adjacent, 3)
}

// Для любых окон и overrides интервалы каждого дня отсортированы и не пересекаются,
// а слоты не пересекаются и упорядочены
func TestBuildDailyIntervals_SortedAndDisjoint(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		var weekly []domain.WeeklyWindow
		for i := 0; i < rnd.Intn(6)+1; i++ {
			start := rnd.Intn(23 * 60)
			weekly = append(weekly, domain.WeeklyWindow{
				DayOfWeek:   rnd.Intn(7),
				StartMinute: start,
				EndMinute:   start + 1 + rnd.Intn(24*60-start),
			})
		}

		var overrides []domain.AvailabilityOverride
		for i := 0; i < rnd.Intn(6); i++ {
			start := monday.Add(time.Duration(rnd.Intn(7*24*60)) * time.Minute)
			kind := domain.OverrideBlock
			if rnd.Intn(2) == 0 {
				kind = domain.OverrideExtend
			}
			overrides = append(overrides, domain.AvailabilityOverride{
				Kind:     kind,
				StartsAt: start,
				EndsAt:   start.Add(time.Duration(rnd.Intn(600)+1) * time.Minute),
			})
		}

		for _, d := range BuildDailyIntervals(weekly, overrides, monday, 7) {
			for i := 0; i+1 < len(d.Intervals); i++ {
				assert.False(t, d.Intervals[i].End.After(d.Intervals[i+1].Start), "intervals overlap or unsorted")
			}
			for _, iv := range d.Intervals {
				assert.True(t, iv.Start.Before(iv.End))
				assert.False(t, iv.Start.Before(d.Day))
				assert.False(t, iv.End.After(d.Day.Add(24*time.Hour)))
			}
		}

		slots := GenerateSlots(Input{
			Weekly:          weekly,
			Overrides:       overrides,
			StartDate:       monday,
			Days:            7,
			DurationMinutes: 15 + rnd.Intn(120),
			BufferMinutes:   rnd.Intn(60),
		})
		for i := 0; i+1 < len(slots); i++ {
			assert.False(t, slots[i].End.After(slots[i+1].Start), "slots overlap or unsorted")
		}
	}
}

func TestValidateWeeklyWindows(t *testing.T) {
	ok := []domain.WeeklyWindow{
		{DayOfWeek: 1, StartMinute: 540, EndMinute: 720},
		{DayOfWeek: 1, StartMinute: 720, EndMinute: 1020},
		{DayOfWeek: 2, StartMinute: 540, EndMinute: 1020},
	}
	assert.NoError(t, ValidateWeeklyWindows(ok))

	overlapping := []domain.WeeklyWindow{
		{DayOfWeek: 1, StartMinute: 600, EndMinute: 900},
		{DayOfWeek: 1, StartMinute: 540, EndMinute: 660},
	}
	assert.ErrorIs(t, ValidateWeeklyWindows(overlapping), ErrOverlappingWindows)

	inverted := []domain.WeeklyWindow{{DayOfWeek: 1, StartMinute: 600, EndMinute: 600}}
	assert.ErrorIs(t, ValidateWeeklyWindows(inverted), ErrInvalidWindow)

	badDay := []domain.WeeklyWindow{{DayOfWeek: 7, StartMinute: 0, EndMinute: 60}}
	assert.ErrorIs(t, ValidateWeeklyWindows(badDay), ErrInvalidWindow)
}

func TestValidateOverride(t *testing.T) {
	reason := "  holiday  "
	got, err := ValidateOverride(at(9, 0), at(10, 0), domain.OverrideBlock, &reason)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "holiday", *got)

	blank := "   "
	got, err = ValidateOverride(at(9, 0), at(10, 0), domain.OverrideExtend, &blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ValidateOverride(at(10, 0), at(9, 0), domain.OverrideBlock, nil)
	assert.ErrorIs(t, err, ErrInvalidOverride)

	_, err = ValidateOverride(monday, monday.Add(7*24*time.Hour+time.Minute), domain.OverrideBlock, nil)
	assert.ErrorIs(t, err, ErrInvalidOverride)

	_, err = ValidateOverride(monday, monday.Add(7*24*time.Hour), domain.OverrideBlock, nil)
	assert.NoError(t, err)

	_, err = ValidateOverride(at(9, 0), at(10, 0), domain.OverrideKind("SHIFT"), nil)
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestValidateServiceTiming(t *testing.T) {
	assert.NoError(t, ValidateServiceTiming(15, 0))
	assert.NoError(t, ValidateServiceTiming(480, 180))
	assert.ErrorIs(t, ValidateServiceTiming(14, 0), ErrInvalidServiceTiming)
	assert.ErrorIs(t, ValidateServiceTiming(481, 0), ErrInvalidServiceTiming)
	assert.ErrorIs(t, ValidateServiceTiming(60, 181), ErrInvalidServiceTiming)
	assert.ErrorIs(t, ValidateServiceTiming(60, -1), ErrInvalidServiceTiming)
}
