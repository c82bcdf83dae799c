package update_vendor_availability

import (
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/availability/models"
)

// UpdateAvailabilityRequest HTTP request model
// Расписание заменяется целиком, пустой список закрывает все дни
type UpdateAvailabilityRequest struct {
	Windows []models.WeeklyWindowDTO `json:"windows"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateAvailabilityRequest) ToServiceRequest(userID, vendorID int64) *models.ReplaceWeeklyRequest {
	return &models.ReplaceWeeklyRequest{
		UserID:   userID,
		VendorID: vendorID,
		Windows:  r.Windows,
	}
}
