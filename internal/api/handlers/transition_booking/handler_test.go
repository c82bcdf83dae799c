package transition_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

type fakeService struct {
	called string
	err    error
}

func (f *fakeService) result(name string, id int64, status domain.BookingStatus) (*models.BookingResponse, error) {
	f.called = name
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id, Status: string(status)}, nil
}

func (f *fakeService) Complete(_ context.Context, _ domain.Identity, id int64) (*models.BookingResponse, error) {
	return f.result("complete", id, domain.StatusCompleted)
}

func (f *fakeService) MarkNoShow(_ context.Context, _ domain.Identity, id int64) (*models.BookingResponse, error) {
	return f.result("no-show", id, domain.StatusNoShow)
}

func (f *fakeService) MarkPaid(_ context.Context, _ domain.Identity, id int64) (*models.BookingResponse, error) {
	return f.result("mark-paid", id, domain.StatusConfirmed)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func request(bookingID string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID, nil)
	req = mux.SetURLVars(req, map[string]string{"bookingId": bookingID})
	return req.WithContext(middleware.WithIdentity(req.Context(), domain.Identity{UserID: 100, Role: domain.RoleVendor}))
}

func TestHandler_RoutesToTransition(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, nopLogger{})

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "complete", handler: h.Complete},
		{name: "no-show", handler: h.NoShow},
		{name: "mark-paid", handler: h.MarkPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, request("5"))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.name, svc.called)
		})
	}
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: bookings.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "not owner", err: bookings.ErrAccessDenied, status: http.StatusForbidden},
		{name: "wrong status", err: bookings.ErrInvalidTransition, status: http.StatusConflict},
		{name: "internal", err: bookings.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(&fakeService{err: tt.err}, nopLogger{}).Complete(rec, request("5"))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandler_InvalidBookingID(t *testing.T) {
	svc := &fakeService{}
	rec := httptest.NewRecorder()
	NewHandler(svc, nopLogger{}).Complete(rec, request("abc"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.called)
}
