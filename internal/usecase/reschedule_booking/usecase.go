package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/allocator"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/txmanager"
)

// UseCase use case для переноса бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	catalogRepo  CatalogRepository
	slots        SlotSource
	allocator    Allocator
	lifecycle    Lifecycle
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	slots SlotSource,
	allocator Allocator,
	lifecycle Lifecycle,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalogRepo:  catalogRepo,
		slots:        slots,
		allocator:    allocator,
		lifecycle:    lifecycle,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute переносит бронирование на новый слот
// Новый слот проверяется по актуальному расписанию, пересечения исключают само бронирование
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking id=%d, user=%d, start=%s",
		req.BookingID, req.Identity.UserID, req.StartAt.UTC().Format(time.RFC3339))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	start := req.StartAt.UTC()

	var (
		booking *domain.Booking
		events  []*domain.BookingEvent
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, events = nil, nil

		// 1. Бронирование и права доступа
		b, err := uc.loadBooking(txCtx, req.BookingID)
		if err != nil {
			return err
		}
		vendor, err := uc.catalogRepo.GetVendorByID(txCtx, b.VendorID)
		if err != nil {
			if errors.Is(err, serviceRepo.ErrVendorNotFound) {
				uc.logger.Warn("RescheduleBooking: vendor id=%d of booking id=%d not found", b.VendorID, b.ID)
				return ErrBookingNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get vendor id=%d: %v", b.VendorID, err)
			return fmt.Errorf("%w: RescheduleBooking - get vendor: %v", ErrInternal, err)
		}
		if !canModify(vendor, b, req.Identity) {
			uc.logger.Warn("RescheduleBooking: access denied for user=%d to booking id=%d", req.Identity.UserID, b.ID)
			return ErrAccessDenied
		}

		// 2. Окно изменений и статус
		if err := uc.lifecycle.CheckNotice(b, now); err != nil {
			uc.logger.Warn("RescheduleBooking: booking id=%d: %v", b.ID, err)
			return fmt.Errorf("%w: %v", ErrPolicyWindow, err)
		}
		if !b.CanBeRescheduled() {
			uc.logger.Warn("RescheduleBooking: booking id=%d is %s", b.ID, b.Status)
			return ErrInvalidTransition
		}

		// 3. Новый слот из актуального расписания
		service, err := uc.loadService(txCtx, b.ServiceID)
		if err != nil {
			return err
		}
		slot, err := uc.findSlot(txCtx, service, start)
		if err != nil {
			return err
		}

		// 4. Место и пересечения без учета самого бронирования
		allocation, err := uc.allocator.Allocate(txCtx, allocator.Request{
			VendorID:         b.VendorID,
			ServiceID:        b.ServiceID,
			Start:            slot.Start,
			End:              slot.End,
			RequestedSeatID:  req.SeatID,
			ExcludeBookingID: &b.ID,
		})
		if err != nil {
			if errors.Is(err, allocator.ErrConflict) {
				uc.logger.Warn("RescheduleBooking: allocation rejected for booking id=%d: %v", b.ID, err)
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
			uc.logger.Error("RescheduleBooking: allocation failed for booking id=%d: %v", b.ID, err)
			return fmt.Errorf("%w: RescheduleBooking - allocate: %v", ErrInternal, err)
		}

		// 5. Переход и событие в outbox
		event, err := uc.lifecycle.Reschedule(txCtx, b, slot.Start, slot.End, allocation.SeatID, allocation.StaffID, now)
		if err != nil {
			return uc.mapLifecycleError(err)
		}
		events = append(events, event)
		booking = b
		return nil
	})
	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("RescheduleBooking: serialization retries exhausted: %v", err)
			return nil, fmt.Errorf("%w: RescheduleBooking - concurrent booking won the slot: %v", ErrConflict, err)
		}
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved to %s (count=%d)",
		booking.ID, booking.ScheduledStart.Format(time.RFC3339), booking.RescheduleCount)

	return &Response{
		Booking:  booking,
		Warnings: uc.lifecycle.AfterCommit(ctx, events, booking),
	}, nil
}

func (uc *UseCase) loadBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: RescheduleBooking - get booking: %v", ErrInternal, err)
	}
	return b, nil
}

func (uc *UseCase) loadService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	service, err := uc.catalogRepo.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("RescheduleBooking: service id=%d not found", serviceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get service id=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: RescheduleBooking - get service: %v", ErrInternal, err)
	}
	return service, nil
}

func (uc *UseCase) findSlot(ctx context.Context, service *domain.Service, start time.Time) (domain.Slot, error) {
	slots, err := uc.slots.SlotsForDay(ctx, service, start)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to generate slots for service=%d: %v", service.ID, err)
		return domain.Slot{}, fmt.Errorf("%w: RescheduleBooking - generate slots: %v", ErrInternal, err)
	}

	slot, ok := availability.FindSlot(slots, start)
	if !ok {
		uc.logger.Warn("RescheduleBooking: slot %s not offered for service=%d", start.Format(time.RFC3339), service.ID)
		return domain.Slot{}, ErrSlotNotAvailable
	}
	if slot.Duration() != service.Duration() {
		return domain.Slot{}, ErrSlotDurationMismatch
	}
	return slot, nil
}

func (uc *UseCase) mapLifecycleError(err error) error {
	if errors.Is(err, bookings.ErrInvalidTransition) {
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	uc.logger.Error("RescheduleBooking: transition failed: %v", err)
	return fmt.Errorf("%w: RescheduleBooking - transition: %v", ErrInternal, err)
}
