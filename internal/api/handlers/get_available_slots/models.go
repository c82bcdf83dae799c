package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ServiceID       int64           `json:"serviceId"`
	VendorID        int64           `json:"vendorId"`
	RangeStart      string          `json:"rangeStart"`
	RangeEnd        string          `json:"rangeEnd"`
	DurationMinutes int             `json:"durationMinutes"`
	BufferMinutes   int             `json:"bufferMinutes"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота (UTC)
type AvailableSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{Start: slot.Start.UTC(), End: slot.End.UTC()}
	}

	return &AvailableSlotsResponse{
		ServiceID:       resp.ServiceID,
		VendorID:        resp.VendorID,
		RangeStart:      resp.RangeStart.Format(domain.DateFormat),
		RangeEnd:        resp.RangeEnd.Format(domain.DateFormat),
		DurationMinutes: resp.DurationMinutes,
		BufferMinutes:   resp.BufferMinutes,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
// startDate в формате YYYY-MM-DD, days необязателен
func ToUseCaseRequest(serviceID int64, startDateStr string, days int) (*getAvailableSlots.Request, error) {
	req := &getAvailableSlots.Request{
		ServiceID: serviceID,
		Days:      days,
	}

	if startDateStr != "" {
		date, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
	}

	return req, nil
}
