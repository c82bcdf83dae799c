package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Projector поддерживает производные записи календаря вендора и клиента
//
// Записи идемпотентны по ключу (booking, owner type): повторная синхронизация
// перезаписывает их текущим снимком бронирования.
type Projector struct {
	repo         CalendarRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewProjector создает новый экземпляр проектора календаря
func NewProjector(repo CalendarRepository, timeProvider TimeProvider, logger Logger) *Projector {
	return &Projector{
		repo:         repo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// SyncBooking записывает запись вендора и запись клиента (или удаляет ее, если клиента нет)
func (p *Projector) SyncBooking(ctx context.Context, booking *domain.Booking) error {
	now := p.timeProvider.Now()

	vendorEntry := entryFor(booking, domain.CalendarOwnerVendor, booking.VendorID, now)
	if err := p.repo.Upsert(ctx, vendorEntry); err != nil {
		p.logger.Error("SyncBooking: failed to upsert vendor entry for booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: SyncBooking - vendor entry booking=%d: %v", ErrSync, booking.ID, err)
	}

	if booking.HasCustomer() {
		customerEntry := entryFor(booking, domain.CalendarOwnerCustomer, *booking.CustomerUserID, now)
		if err := p.repo.Upsert(ctx, customerEntry); err != nil {
			p.logger.Error("SyncBooking: failed to upsert customer entry for booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: SyncBooking - customer entry booking=%d: %v", ErrSync, booking.ID, err)
		}
		return nil
	}

	if err := p.repo.Delete(ctx, booking.ID, domain.CalendarOwnerCustomer); err != nil {
		p.logger.Error("SyncBooking: failed to delete customer entry for booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: SyncBooking - delete customer entry booking=%d: %v", ErrSync, booking.ID, err)
	}
	return nil
}

// SyncBookings синхронизирует несколько бронирований, не останавливаясь на первой ошибке
func (p *Projector) SyncBookings(ctx context.Context, bookings []*domain.Booking) error {
	var errs []error
	for _, b := range bookings {
		if err := p.SyncBooking(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListForVendor возвращает записи календаря вендора в диапазоне [from, to)
func (p *Projector) ListForVendor(ctx context.Context, vendorID int64, from, to time.Time) ([]*domain.CalendarEntry, error) {
	return p.list(ctx, domain.CalendarOwnerVendor, vendorID, from, to)
}

// ListForCustomer возвращает записи календаря клиента в диапазоне [from, to)
func (p *Projector) ListForCustomer(ctx context.Context, userID int64, from, to time.Time) ([]*domain.CalendarEntry, error) {
	return p.list(ctx, domain.CalendarOwnerCustomer, userID, from, to)
}

func (p *Projector) list(
	ctx context.Context,
	ownerType domain.CalendarOwnerType,
	ownerID int64,
	from, to time.Time,
) ([]*domain.CalendarEntry, error) {
	if !from.Before(to) {
		return nil, ErrInvalidRange
	}

	entries, err := p.repo.ListByOwner(ctx, ownerType, ownerID, from, to)
	if err != nil {
		p.logger.Error("ListCalendar: failed to list %s entries for owner=%d: %v", ownerType, ownerID, err)
		return nil, fmt.Errorf("%w: ListCalendar - repository error: %v", ErrInternal, err)
	}
	return entries, nil
}

func entryFor(b *domain.Booking, ownerType domain.CalendarOwnerType, ownerID int64, now time.Time) *domain.CalendarEntry {
	return &domain.CalendarEntry{
		BookingID: b.ID,
		OwnerType: ownerType,
		OwnerID:   ownerID,
		VendorID:  b.VendorID,
		ServiceID: b.ServiceID,
		StartsAt:  b.ScheduledStart,
		EndsAt:    b.ScheduledEnd,
		Status:    b.Status,
		UpdatedAt: now,
	}
}
