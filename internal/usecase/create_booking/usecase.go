package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	serviceRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/allocator"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/giftcards"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/pricing"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/txmanager"
)

// Options бизнес-настройки создания бронирований
type Options struct {
	MarkupBps          int
	Currency           string
	PaystackPublicKey  string
	InitializeCheckout bool
}

// UseCase use case для создания бронирования
type UseCase struct {
	catalogRepo  CatalogRepository
	slots        SlotSource
	allocator    Allocator
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	giftCards    GiftCards
	lifecycle    Lifecycle
	gateway      PaymentGateway
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	opts         Options
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	slots SlotSource,
	allocator Allocator,
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	giftCards GiftCards,
	lifecycle Lifecycle,
	gateway PaymentGateway,
	txManager TransactionManager,
	timeProvider TimeProvider,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	opts.Currency = strings.ToUpper(opts.Currency)
	return &UseCase{
		catalogRepo:  catalogRepo,
		slots:        slots,
		allocator:    allocator,
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		giftCards:    giftCards,
		lifecycle:    lifecycle,
		gateway:      gateway,
		txManager:    txManager,
		timeProvider: timeProvider,
		metrics:      metrics,
		opts:         opts,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка пересечений и вставка выполняются в одной сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: source=%s, service=%d, start=%s", req.Source, req.ServiceID, req.StartAt.UTC().Format(time.RFC3339))

	// 1. Валидация входных данных
	contact, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	start := req.StartAt.UTC()

	// 3. Получаем услугу и вендора
	service, vendor, err := uc.loadBookable(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Проверяем, что слот есть в актуальном расписании и совпадает по длительности
	slot, err := uc.findSlot(ctx, service, start)
	if err != nil {
		return nil, err
	}

	// 5. Считаем цену и депозит
	collectDeposit := req.Source == domain.SourceOnline || req.CollectDeposit
	quote := pricing.Calculate(service, uc.opts.MarkupBps, collectDeposit)

	reference := newReference()
	booking := &domain.Booking{
		Reference:      reference,
		VendorID:       vendor.ID,
		ServiceID:      service.ID,
		CustomerName:   contact.name,
		CustomerEmail:  contact.email,
		CustomerPhone:  contact.phone,
		ScheduledStart: slot.Start,
		ScheduledEnd:   slot.End,
		Price:          quote.Price,
		Deposit:        quote.Deposit,
		Balance:        quote.Balance,
		Currency:       uc.opts.Currency,
		Source:         req.Source,
		Notes:          contact.notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Source == domain.SourceOnline && req.Identity != nil {
		booking.CustomerUserID = &req.Identity.UserID
	}

	var (
		result      *domain.Booking
		intent      *domain.PaymentIntent
		application *domain.GiftCardApplication
		events      []*domain.BookingEvent
	)

	// 6. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// При повторе транзакции начинаем с чистого состояния
		draft := *booking
		result, intent, application, events = nil, nil, nil, nil

		// 6.1. Выбираем место и проверяем пересечения
		allocation, err := uc.allocator.Allocate(txCtx, allocator.Request{
			VendorID:        vendor.ID,
			ServiceID:       service.ID,
			Start:           draft.ScheduledStart,
			End:             draft.ScheduledEnd,
			RequestedSeatID: req.SeatID,
		})
		if err != nil {
			return uc.mapAllocatorError(err)
		}
		draft.SeatID = allocation.SeatID
		draft.StaffID = allocation.StaffID

		// 6.2. Применяем подарочную карту до выбора статуса
		if contact.code != nil {
			application, err = uc.applyGiftCard(txCtx, &draft, *contact.code)
			if err != nil {
				return err
			}
		}

		if draft.Deposit > 0 {
			draft.Status = domain.StatusAwaitingPayment
		} else {
			draft.Status = domain.StatusConfirmed
		}

		// 6.3. Сохраняем бронирование
		created, err := uc.bookingRepo.Create(txCtx, &draft)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: CreateBooking - create booking: %v", ErrInternal, err)
		}

		if application != nil {
			if err := uc.giftCards.Redeem(txCtx, application, created.ID); err != nil {
				uc.logger.Error("CreateBooking: failed to redeem gift card for booking id=%d: %v", created.ID, err)
				return fmt.Errorf("%w: CreateBooking - redeem gift card: %v", ErrInternal, err)
			}
		}

		// 6.4. Платежное намерение только при ненулевом депозите
		if created.Deposit > 0 {
			intent, err = uc.paymentRepo.Create(txCtx, uc.newIntent(created, req, application, now))
			if err != nil {
				uc.logger.Error("CreateBooking: failed to create payment intent for booking id=%d: %v", created.ID, err)
				return fmt.Errorf("%w: CreateBooking - create payment intent: %v", ErrInternal, err)
			}
		}

		// 6.5. События в outbox в той же транзакции
		event, err := uc.lifecycle.Emit(txCtx, domain.EventBookingCreated, created, now, nil)
		if err != nil {
			return err
		}
		events = append(events, event)

		next := domain.EventBookingConfirmed
		if created.Status == domain.StatusAwaitingPayment {
			next = domain.EventBookingAwaitingPayment
		}
		event, err = uc.lifecycle.Emit(txCtx, next, created, now, nil)
		if err != nil {
			return err
		}
		events = append(events, event)

		result = created
		return nil
	})
	if err != nil {
		if contact.code != nil && errors.Is(err, ErrGiftCardRejected) {
			// Транзакция откатилась, статус отклоненной карты сохраняем отдельно
			if settleErr := uc.giftCards.SettleRejected(ctx, *contact.code); settleErr != nil {
				uc.logger.Error("CreateBooking: failed to settle rejected gift card: %v", settleErr)
			}
		}
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("CreateBooking: serialization retries exhausted: %v", err)
			return nil, fmt.Errorf("%w: CreateBooking - concurrent booking won the slot: %v", ErrConflict, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d reference=%s status=%s",
		result.ID, result.Reference, result.Status)
	if uc.metrics != nil {
		uc.metrics.RecordBookingCreated(string(result.Source), string(result.Status))
	}

	// 7. События и календарь после коммита
	warnings := uc.lifecycle.AfterCommit(ctx, events, result)

	return &Response{
		Booking:       result,
		PaymentIntent: intent,
		GiftCard:      application,
		Checkout:      uc.checkout(ctx, result, intent),
		Warnings:      warnings,
	}, nil
}

func (uc *UseCase) loadBookable(ctx context.Context, req *Request) (*domain.Service, *domain.Vendor, error) {
	service, err := uc.catalogRepo.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, nil, fmt.Errorf("%w: CreateBooking - get service: %v", ErrInternal, err)
	}

	if req.Source == domain.SourceManual && service.VendorID != req.VendorID {
		uc.logger.Warn("CreateBooking: service id=%d does not belong to vendor=%d", service.ID, req.VendorID)
		return nil, nil, ErrServiceNotFound
	}

	vendor, err := uc.catalogRepo.GetVendorByID(ctx, service.VendorID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrVendorNotFound) {
			uc.logger.Warn("CreateBooking: vendor id=%d not found", service.VendorID)
			return nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get vendor id=%d: %v", service.VendorID, err)
		return nil, nil, fmt.Errorf("%w: CreateBooking - get vendor: %v", ErrInternal, err)
	}

	if req.Source == domain.SourceManual && !vendor.IsOwnedBy(req.Identity.UserID) {
		uc.logger.Warn("CreateBooking: user=%d is not the owner of vendor=%d", req.Identity.UserID, vendor.ID)
		return nil, nil, ErrAccessDenied
	}

	if err := checkBookable(service, vendor); err != nil {
		uc.logger.Warn("CreateBooking: service id=%d is not bookable: %v", service.ID, err)
		return nil, nil, err
	}

	return service, vendor, nil
}

// findSlot ищет слот с точным совпадением начала в расписании на сутки
func (uc *UseCase) findSlot(ctx context.Context, service *domain.Service, start time.Time) (domain.Slot, error) {
	slots, err := uc.slots.SlotsForDay(ctx, service, start)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to generate slots for service=%d: %v", service.ID, err)
		return domain.Slot{}, fmt.Errorf("%w: CreateBooking - generate slots: %v", ErrInternal, err)
	}

	slot, ok := availability.FindSlot(slots, start)
	if !ok {
		uc.logger.Warn("CreateBooking: slot %s not offered for service=%d", start.Format(time.RFC3339), service.ID)
		return domain.Slot{}, ErrSlotNotAvailable
	}
	if slot.Duration() != service.Duration() {
		uc.logger.Warn("CreateBooking: slot duration %s does not match service=%d duration %s",
			slot.Duration(), service.ID, service.Duration())
		return domain.Slot{}, ErrSlotDurationMismatch
	}
	return slot, nil
}

func (uc *UseCase) applyGiftCard(ctx context.Context, draft *domain.Booking, code string) (*domain.GiftCardApplication, error) {
	application, err := uc.giftCards.Apply(ctx, giftcards.ApplyRequest{
		VendorID:   draft.VendorID,
		Currency:   draft.Currency,
		Code:       code,
		DepositDue: draft.Deposit,
		BalanceDue: draft.Balance,
	})
	if err != nil {
		switch {
		case errors.Is(err, giftcards.ErrGiftCardNotFound):
			return nil, ErrGiftCardNotFound
		case errors.Is(err, giftcards.ErrInvalidCode), errors.Is(err, giftcards.ErrGiftCardUnusable):
			uc.logger.Warn("CreateBooking: gift card rejected: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrGiftCardRejected, err)
		}
		return nil, fmt.Errorf("%w: CreateBooking - apply gift card: %v", ErrInternal, err)
	}

	draft.Deposit = application.RemainingDeposit
	draft.Balance = application.RemainingBalance
	draft.GiftCardApplied = application.TotalApplied()
	return application, nil
}

func (uc *UseCase) mapAllocatorError(err error) error {
	if errors.Is(err, allocator.ErrConflict) {
		uc.logger.Warn("CreateBooking: allocation rejected: %v", err)
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	uc.logger.Error("CreateBooking: allocation failed: %v", err)
	return fmt.Errorf("%w: CreateBooking - allocate: %v", ErrInternal, err)
}

func (uc *UseCase) newIntent(
	booking *domain.Booking,
	req *Request,
	application *domain.GiftCardApplication,
	now time.Time,
) *domain.PaymentIntent {
	metadata := map[string]interface{}{
		"bookingId":     booking.ID,
		"vendorId":      booking.VendorID,
		"serviceId":     booking.ServiceID,
		"customerEmail": booking.CustomerEmail,
		"source":        string(booking.Source),
	}
	if req.Identity != nil && req.Source == domain.SourceManual {
		metadata["createdByUserId"] = req.Identity.UserID
	}
	if application != nil {
		metadata["giftCardId"] = application.GiftCardID
		metadata["giftCardApplied"] = application.TotalApplied()
	}

	bookingID := booking.ID
	return &domain.PaymentIntent{
		Subject:     domain.SubjectBooking,
		BookingID:   &bookingID,
		Provider:    domain.PaymentProviderPaystack,
		ProviderRef: booking.Reference,
		Amount:      booking.Deposit,
		Currency:    booking.Currency,
		Status:      domain.IntentRequiresPaymentMethod,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// checkout собирает данные оплаты и, если включено, создает checkout-сессию у провайдера
// Ошибка провайдера не отменяет бронирование
func (uc *UseCase) checkout(ctx context.Context, booking *domain.Booking, intent *domain.PaymentIntent) *Checkout {
	if intent == nil {
		return nil
	}

	out := &Checkout{
		Provider:  intent.Provider,
		PublicKey: uc.opts.PaystackPublicKey,
		Reference: intent.ProviderRef,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		Email:     booking.CustomerEmail,
		Channels:  paystack.ChannelsFor(intent.Currency),
		Metadata: map[string]interface{}{
			"bookingId":     booking.ID,
			"vendorId":      booking.VendorID,
			"serviceId":     booking.ServiceID,
			"customerName":  booking.CustomerName,
			"customerPhone": booking.CustomerPhone,
		},
	}

	if booking.Source != domain.SourceOnline || !uc.opts.InitializeCheckout || uc.gateway == nil || !uc.gateway.Enabled() {
		return out
	}
	if booking.CustomerEmail == nil {
		uc.logger.Warn("CreateBooking: booking id=%d has no customer email, checkout not initialized", booking.ID)
		return out
	}

	session, err := uc.gateway.InitializeWithGracefulDegradation(ctx, paystack.InitializeRequest{
		Email:     *booking.CustomerEmail,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		Reference: intent.ProviderRef,
		Channels:  out.Channels,
		Metadata:  out.Metadata,
	})
	if err != nil {
		uc.logger.Warn("CreateBooking: checkout for booking id=%d not initialized: %v", booking.ID, err)
		return out
	}
	out.AuthorizationURL = &session.AuthorizationURL
	return out
}

// newReference возвращает reference вида book_<24 hex>
func newReference() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.ReferencePrefix + hex[:domain.ReferenceHexLength]
}
