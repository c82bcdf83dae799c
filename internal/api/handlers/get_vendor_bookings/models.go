package get_vendor_bookings

import (
	"net/http"
	"strings"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// status можно передать несколько раз или через запятую
func ToServiceRequest(r *http.Request, identity domain.Identity, vendorID int64) (*models.VendorBookingsRequest, error) {
	req := &models.VendorBookingsRequest{
		Identity: identity,
		VendorID: vendorID,
	}

	for _, raw := range r.URL.Query()["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				req.Statuses = append(req.Statuses, s)
			}
		}
	}

	var err error
	if req.From, err = handlers.QueryTime(r, "from"); err != nil {
		return nil, err
	}
	if req.To, err = handlers.QueryTime(r, "to"); err != nil {
		return nil, err
	}
	if req.Take, err = handlers.QueryInt(r, "take", 0); err != nil {
		return nil, err
	}
	if req.Skip, err = handlers.QueryInt(r, "skip", 0); err != nil {
		return nil, err
	}

	return req, nil
}
