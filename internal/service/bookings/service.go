package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	vendorRepo   VendorRepository
	paymentRepo  PaymentRepository
	lifecycle    *Lifecycle
	calendar     CalendarProjector
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	vendorRepo VendorRepository,
	paymentRepo PaymentRepository,
	lifecycle *Lifecycle,
	calendar CalendarProjector,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		vendorRepo:   vendorRepo,
		paymentRepo:  paymentRepo,
		lifecycle:    lifecycle,
		calendar:     calendar,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Бронирование видят владелец вендора и клиент
func (s *Service) GetByID(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", bookingID, identity.UserID)

	booking, err := s.loadBooking(ctx, "GetByID", bookingID)
	if err != nil {
		return nil, err
	}

	vendor, err := s.getVendor(ctx, "GetByID", booking.VendorID)
	if err != nil {
		return nil, err
	}

	if _, ok := resolveActor(vendor, booking, identity); !ok {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", identity.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование
// Отменить могут владелец вендора (VENDOR), клиент (CUSTOMER) или администратор (SYSTEM)
func (s *Service) Cancel(ctx context.Context, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", req.BookingID, req.Identity.UserID)

	reason, err := normalizeReason(req.Reason)
	if err != nil {
		s.logger.Warn("Cancel: invalid reason for booking id=%d: %v", req.BookingID, err)
		return nil, err
	}

	now := s.timeProvider.Now()
	var booking *domain.Booking
	var events []*domain.BookingEvent

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		events = nil

		b, err := s.loadBooking(txCtx, "Cancel", req.BookingID)
		if err != nil {
			return err
		}
		if b.IsCancelled() {
			return ErrAlreadyCancelled
		}

		vendor, err := s.getVendor(txCtx, "Cancel", b.VendorID)
		if err != nil {
			return err
		}
		actor, ok := resolveActor(vendor, b, req.Identity)
		if !ok {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.Identity.UserID, b.ID)
			return ErrAccessDenied
		}

		if err := s.lifecycle.CheckNotice(b, now); err != nil {
			return err
		}

		event, err := s.lifecycle.Cancel(txCtx, b, actor, reason, now)
		if err != nil {
			return err
		}
		events = append(events, event)
		booking = b
		return nil
	})
	if err != nil {
		return nil, s.translate("Cancel", err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d by %s", booking.ID, *booking.CancelledBy)
	resp := models.FromDomainBooking(booking)
	resp.Warnings = s.lifecycle.AfterCommit(ctx, events, booking)
	return resp, nil
}

// Complete отмечает бронирование выполненным
// Доступно только владельцу вендора
func (s *Service) Complete(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("Complete: completing booking id=%d by user=%d", bookingID, identity.UserID)

	return s.vendorTransition(ctx, "Complete", identity, bookingID, func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error) {
		return s.lifecycle.Complete(txCtx, b, s.timeProvider.Now(), map[string]interface{}{"markedCompleteManually": true})
	})
}

// MarkNoShow отмечает неявку клиента
// Доступно только владельцу вендора
func (s *Service) MarkNoShow(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("MarkNoShow: marking booking id=%d as no-show by user=%d", bookingID, identity.UserID)

	return s.vendorTransition(ctx, "MarkNoShow", identity, bookingID, func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error) {
		return s.lifecycle.MarkNoShow(txCtx, b, s.timeProvider.Now())
	})
}

// MarkPaid подтверждает оплату ручного бронирования вне платежного провайдера
// Доступно только владельцу вендора для MANUAL бронирований в AWAITING_PAYMENT
func (s *Service) MarkPaid(ctx context.Context, identity domain.Identity, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("MarkPaid: marking booking id=%d as paid by user=%d", bookingID, identity.UserID)

	return s.vendorTransition(ctx, "MarkPaid", identity, bookingID, func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error) {
		if b.Source != domain.SourceManual {
			return nil, fmt.Errorf("%w: only manual bookings can be marked paid here", ErrInvalidTransition)
		}
		if b.Status != domain.StatusAwaitingPayment {
			return nil, fmt.Errorf("%w: only awaiting payment bookings can be marked paid", ErrInvalidTransition)
		}

		now := s.timeProvider.Now()
		intent, err := s.paymentRepo.GetLatestByBookingID(txCtx, b.ID)
		switch {
		case errors.Is(err, paymentRepo.ErrIntentNotFound):
			s.logger.Warn("MarkPaid: booking id=%d has no payment intent", b.ID)
		case err != nil:
			return nil, fmt.Errorf("%w: MarkPaid - get intent: %v", ErrInternal, err)
		default:
			intent.Status = domain.IntentSucceeded
			intent.ConfirmedAt = &now
			intent.UpdatedAt = now
			if err := s.paymentRepo.Update(txCtx, intent); err != nil {
				return nil, fmt.Errorf("%w: MarkPaid - update intent: %v", ErrInternal, err)
			}
		}

		return s.lifecycle.Confirm(txCtx, b, now, true, map[string]interface{}{"markedPaidManually": true})
	})
}

// Claim привязывает гостевые бронирования с совпадающим email или телефоном к аккаунту клиента
func (s *Service) Claim(ctx context.Context, req *models.ClaimBookingsRequest) (*models.BookingListResponse, error) {
	email := normalizeEmail(req.Email)
	if email == nil {
		email = normalizeEmail(req.Identity.Email)
	}
	phone := normalizeOptional(req.Phone)
	if phone == nil {
		phone = normalizeOptional(req.Identity.Phone)
	}

	s.logger.Info("Claim: claiming bookings for user=%d", req.Identity.UserID)

	if email == nil && phone == nil {
		s.logger.Warn("Claim: user=%d has neither email nor phone", req.Identity.UserID)
		return nil, fmt.Errorf("%w: provide an email or phone number to search for bookings", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	var claimed []*domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		claimed = nil

		matches, err := s.bookingRepo.ListClaimable(txCtx, email, phone, domain.MaxClaimBatch)
		if err != nil {
			return fmt.Errorf("%w: Claim - list claimable: %v", ErrInternal, err)
		}

		userID := req.Identity.UserID
		for _, b := range matches {
			b.CustomerUserID = &userID
			b.UpdatedAt = now
			if err := s.bookingRepo.Update(txCtx, b); err != nil {
				return fmt.Errorf("%w: Claim - update booking id=%d: %v", ErrInternal, b.ID, err)
			}
			claimed = append(claimed, b)
		}
		return nil
	})
	if err != nil {
		return nil, s.translate("Claim", err)
	}

	s.logger.Info("Claim: user=%d claimed %d bookings", req.Identity.UserID, len(claimed))
	resp := models.FromDomainBookingList(claimed)
	resp.Warnings = s.lifecycle.AfterCommit(ctx, nil, claimed...)
	return resp, nil
}

// vendorTransition общий сценарий перехода, доступного только владельцу вендора
func (s *Service) vendorTransition(
	ctx context.Context,
	op string,
	identity domain.Identity,
	bookingID int64,
	transition func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error),
) (*models.BookingResponse, error) {
	var booking *domain.Booking
	var events []*domain.BookingEvent

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		events = nil

		b, err := s.loadBooking(txCtx, op, bookingID)
		if err != nil {
			return err
		}

		vendor, err := s.getVendor(txCtx, op, b.VendorID)
		if err != nil {
			return err
		}
		if !vendor.IsOwnedBy(identity.UserID) {
			s.logger.Warn("%s: user=%d is not the owner of vendor=%d", op, identity.UserID, vendor.ID)
			return ErrAccessDenied
		}

		event, err := transition(txCtx, b)
		if err != nil {
			return err
		}
		events = append(events, event)
		booking = b
		return nil
	})
	if err != nil {
		return nil, s.translate(op, err)
	}

	s.logger.Info("%s: booking id=%d is now %s", op, booking.ID, booking.Status)
	resp := models.FromDomainBooking(booking)
	resp.Warnings = s.lifecycle.AfterCommit(ctx, events, booking)
	return resp, nil
}

// Вспомогательные методы

func (s *Service) loadBooking(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) getVendor(ctx context.Context, op string, vendorID int64) (*domain.Vendor, error) {
	vendor, err := s.vendorRepo.GetVendorByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrVendorNotFound) {
			s.logger.Warn("%s: vendor id=%d not found", op, vendorID)
			return nil, ErrVendorNotFound
		}
		s.logger.Error("%s: failed to get vendor id=%d: %v", op, vendorID, err)
		return nil, fmt.Errorf("%w: %s - failed to get vendor: %v", ErrInternal, op, err)
	}
	return vendor, nil
}

func (s *Service) checkVendorOwner(ctx context.Context, op string, vendorID int64, identity domain.Identity) error {
	vendor, err := s.getVendor(ctx, op, vendorID)
	if err != nil {
		return err
	}
	if !vendor.IsOwnedBy(identity.UserID) {
		s.logger.Warn("%s: user=%d is not the owner of vendor=%d", op, identity.UserID, vendorID)
		return ErrAccessDenied
	}
	return nil
}

// translate оставляет ошибки таксономии сервиса как есть, остальное заворачивает в ErrInternal
func (s *Service) translate(op string, err error) error {
	for _, known := range []error{
		ErrBookingNotFound,
		ErrVendorNotFound,
		ErrAccessDenied,
		ErrInvalidInput,
		ErrPolicyWindow,
		ErrInvalidTransition,
		ErrInternal,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	s.logger.Error("%s: transaction error: %v", op, err)
	return fmt.Errorf("%w: %s - transaction error: %v", ErrInternal, op, err)
}

// resolveActor определяет, от чьего имени действует пользователь
func resolveActor(vendor *domain.Vendor, booking *domain.Booking, identity domain.Identity) (domain.CancellationActor, bool) {
	switch {
	case vendor.IsOwnedBy(identity.UserID):
		return domain.ActorVendor, true
	case booking.CustomerUserID != nil && *booking.CustomerUserID == identity.UserID:
		return domain.ActorCustomer, true
	case identity.Role == domain.RoleAdmin:
		return domain.ActorSystem, true
	}
	return "", false
}

func normalizeReason(reason *string) (*string, error) {
	trimmed := normalizeOptional(reason)
	if trimmed != nil && len(*trimmed) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}
	return trimmed, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeEmail(value *string) *string {
	trimmed := normalizeOptional(value)
	if trimmed == nil {
		return nil
	}
	lower := strings.ToLower(*trimmed)
	return &lower
}
