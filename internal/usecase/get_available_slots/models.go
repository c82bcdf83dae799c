package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ServiceID int64
	StartDate *time.Time // nil = сегодня (UTC)
	Days      int        // 0 = значение по умолчанию
}

// Response модель ответа со списком доступных слотов
type Response struct {
	ServiceID       int64
	VendorID        int64
	RangeStart      time.Time
	RangeEnd        time.Time
	DurationMinutes int
	BufferMinutes   int
	Slots           []domain.Slot
}
