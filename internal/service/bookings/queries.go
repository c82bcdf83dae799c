package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
	calendarSvc "github.com/m04kA/SMC-MarketplaceBooking/internal/service/calendar"
)

// CustomerScope выбор списка бронирований клиента
type CustomerScope string

const (
	ScopeUpcoming CustomerScope = "upcoming"
	ScopeHistory  CustomerScope = "history"
)

// ListVendorBookings получает бронирования вендора с фильтрацией по статусу и периоду
// Доступно только владельцу вендора
func (s *Service) ListVendorBookings(ctx context.Context, req *models.VendorBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("ListVendorBookings: fetching bookings for vendor=%d, statuses=%v, take=%d, skip=%d",
		req.VendorID, req.Statuses, req.Take, req.Skip)

	if req.Take == 0 {
		req.Take = domain.DefaultVendorBookingsTake
	}
	if req.Take < 1 || req.Take > domain.MaxVendorBookingsTake || req.Skip < 0 {
		return nil, fmt.Errorf("%w: take must be 1..%d and skip >= 0", ErrInvalidInput, domain.MaxVendorBookingsTake)
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListVendorBookings: invalid filter for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkVendorOwner(ctx, "ListVendorBookings", req.VendorID, req.Identity); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.ListByVendor(ctx, filter)
	if err != nil {
		s.logger.Error("ListVendorBookings: repository error for vendor=%d: %v", req.VendorID, err)
		return nil, fmt.Errorf("%w: ListVendorBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListVendorBookings: successfully fetched %d bookings for vendor=%d", len(bookings), req.VendorID)
	return models.FromDomainBookingList(bookings), nil
}

// ListVendorUpcoming получает ближайшие активные бронирования вендора
func (s *Service) ListVendorUpcoming(ctx context.Context, identity domain.Identity, vendorID int64, limit int) (*models.BookingListResponse, error) {
	s.logger.Info("ListVendorUpcoming: fetching upcoming bookings for vendor=%d, limit=%d", vendorID, limit)

	if limit == 0 {
		limit = domain.DefaultUpcomingLimit
	}
	if limit < 1 || limit > domain.MaxUpcomingLimit {
		return nil, fmt.Errorf("%w: limit must be 1..%d", ErrInvalidInput, domain.MaxUpcomingLimit)
	}

	if err := s.checkVendorOwner(ctx, "ListVendorUpcoming", vendorID, identity); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.ListUpcomingByVendor(ctx, vendorID, s.timeProvider.Now(), limit)
	if err != nil {
		s.logger.Error("ListVendorUpcoming: repository error for vendor=%d: %v", vendorID, err)
		return nil, fmt.Errorf("%w: ListVendorUpcoming - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// ListCustomerBookings получает предстоящие бронирования клиента или историю
func (s *Service) ListCustomerBookings(ctx context.Context, identity domain.Identity, scope CustomerScope) (*models.BookingListResponse, error) {
	s.logger.Info("ListCustomerBookings: fetching %s bookings for user=%d", scope, identity.UserID)

	if scope == "" {
		scope = ScopeUpcoming
	}
	if scope != ScopeUpcoming && scope != ScopeHistory {
		return nil, fmt.Errorf("%w: scope must be upcoming or history", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.ListByCustomer(ctx, identity.UserID, scope == ScopeUpcoming, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("ListCustomerBookings: repository error for user=%d: %v", identity.UserID, err)
		return nil, fmt.Errorf("%w: ListCustomerBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// GetVendorStats получает количество бронирований по статусам и сумму завершенных продаж
func (s *Service) GetVendorStats(ctx context.Context, identity domain.Identity, vendorID int64) (*models.VendorStatsResponse, error) {
	s.logger.Info("GetVendorStats: fetching stats for vendor=%d", vendorID)

	if err := s.checkVendorOwner(ctx, "GetVendorStats", vendorID, identity); err != nil {
		return nil, err
	}

	stats, err := s.bookingRepo.GetVendorStats(ctx, vendorID)
	if err != nil {
		s.logger.Error("GetVendorStats: repository error for vendor=%d: %v", vendorID, err)
		return nil, fmt.Errorf("%w: GetVendorStats - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainStats(stats), nil
}

// VendorCalendar получает календарь вендора за период
func (s *Service) VendorCalendar(ctx context.Context, identity domain.Identity, vendorID int64, from, to time.Time) (*models.CalendarResponse, error) {
	s.logger.Info("VendorCalendar: fetching calendar for vendor=%d", vendorID)

	if err := s.checkVendorOwner(ctx, "VendorCalendar", vendorID, identity); err != nil {
		return nil, err
	}

	entries, err := s.calendar.ListForVendor(ctx, vendorID, from, to)
	if err != nil {
		return nil, s.calendarError("VendorCalendar", err)
	}
	return models.FromDomainCalendar(entries), nil
}

// CustomerCalendar получает календарь клиента за период
func (s *Service) CustomerCalendar(ctx context.Context, identity domain.Identity, from, to time.Time) (*models.CalendarResponse, error) {
	s.logger.Info("CustomerCalendar: fetching calendar for user=%d", identity.UserID)

	entries, err := s.calendar.ListForCustomer(ctx, identity.UserID, from, to)
	if err != nil {
		return nil, s.calendarError("CustomerCalendar", err)
	}
	return models.FromDomainCalendar(entries), nil
}

func (s *Service) calendarError(op string, err error) error {
	if errors.Is(err, calendarSvc.ErrInvalidRange) {
		return fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	s.logger.Error("%s: calendar error: %v", op, err)
	return fmt.Errorf("%w: %s - calendar error: %v", ErrInternal, op, err)
}
