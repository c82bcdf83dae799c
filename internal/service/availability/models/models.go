package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/types"
)

// Request модели

// WeeklyWindowDTO недельное окно в формате HH:MM
type WeeklyWindowDTO struct {
	DayOfWeek int              `json:"dayOfWeek"` // 0 = воскресенье
	StartTime types.TimeString `json:"startTime"` // "09:00"
	EndTime   types.TimeString `json:"endTime"`   // "17:00", "24:00" допустимо
}

// ReplaceWeeklyRequest запрос на замену недельного расписания
type ReplaceWeeklyRequest struct {
	UserID   int64             `json:"-"`
	VendorID int64             `json:"-"`
	Windows  []WeeklyWindowDTO `json:"windows"`
}

// ToDomainWindows конвертирует DTO в доменные окна
func (r *ReplaceWeeklyRequest) ToDomainWindows() ([]domain.WeeklyWindow, error) {
	windows := make([]domain.WeeklyWindow, 0, len(r.Windows))
	for i, w := range r.Windows {
		start, err := w.StartTime.Minutes()
		if err != nil {
			return nil, fmt.Errorf("window #%d startTime: %w", i, err)
		}
		end, err := w.EndTime.Minutes()
		if err != nil {
			return nil, fmt.Errorf("window #%d endTime: %w", i, err)
		}
		windows = append(windows, domain.WeeklyWindow{
			VendorID:    r.VendorID,
			DayOfWeek:   w.DayOfWeek,
			StartMinute: start,
			EndMinute:   end,
		})
	}
	return windows, nil
}

// CreateOverrideRequest запрос на создание override
type CreateOverrideRequest struct {
	UserID   int64     `json:"-"`
	VendorID int64     `json:"-"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Kind     string    `json:"kind"` // BLOCK | EXTEND
	Reason   *string   `json:"reason,omitempty"`
}

// ListOverridesRequest запрос на получение overrides в диапазоне
type ListOverridesRequest struct {
	UserID   int64
	VendorID int64
	From     time.Time
	To       time.Time
}

// DeleteOverrideRequest запрос на удаление override
type DeleteOverrideRequest struct {
	UserID     int64
	VendorID   int64
	OverrideID int64
}

// Response модели

// WeeklyAvailabilityResponse недельное расписание вендора
type WeeklyAvailabilityResponse struct {
	VendorID int64             `json:"vendorId"`
	Windows  []WeeklyWindowDTO `json:"windows"`
}

// OverrideResponse данные override
type OverrideResponse struct {
	ID        int64     `json:"id"`
	VendorID  int64     `json:"vendorId"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Kind      string    `json:"kind"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OverrideListResponse список overrides
type OverrideListResponse struct {
	Overrides []OverrideResponse `json:"overrides"`
}

// Методы конвертации

// FromDomainWindows конвертирует доменные окна в ответ
func FromDomainWindows(vendorID int64, windows []domain.WeeklyWindow) *WeeklyAvailabilityResponse {
	resp := &WeeklyAvailabilityResponse{
		VendorID: vendorID,
		Windows:  make([]WeeklyWindowDTO, 0, len(windows)),
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, WeeklyWindowDTO{
			DayOfWeek: w.DayOfWeek,
			StartTime: types.FromMinutes(w.StartMinute),
			EndTime:   types.FromMinutes(w.EndMinute),
		})
	}
	return resp
}

// FromDomainOverride конвертирует override в DTO
func FromDomainOverride(o *domain.AvailabilityOverride) *OverrideResponse {
	if o == nil {
		return nil
	}
	return &OverrideResponse{
		ID:        o.ID,
		VendorID:  o.VendorID,
		StartsAt:  o.StartsAt.UTC(),
		EndsAt:    o.EndsAt.UTC(),
		Kind:      string(o.Kind),
		Reason:    o.Reason,
		CreatedAt: o.CreatedAt,
	}
}

// FromDomainOverrideList конвертирует список overrides
func FromDomainOverrideList(overrides []domain.AvailabilityOverride) *OverrideListResponse {
	resp := &OverrideListResponse{Overrides: make([]OverrideResponse, 0, len(overrides))}
	for i := range overrides {
		resp.Overrides = append(resp.Overrides, *FromDomainOverride(&overrides[i]))
	}
	return resp
}
