package reconcile_payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
)

// UseCase use case сверки платежей по вебхукам провайдера
type UseCase struct {
	verifier        Verifier
	paymentRepo     PaymentRepository
	bookingRepo     BookingRepository
	supplyOrderRepo SupplyOrderRepository
	giftCards       GiftCardActivator
	lifecycle       Lifecycle
	txManager       TransactionManager
	timeProvider    TimeProvider
	metrics         Metrics
	currency        string
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// currency используется, когда провайдер не прислал валюту
func NewUseCase(
	verifier Verifier,
	paymentRepo PaymentRepository,
	bookingRepo BookingRepository,
	supplyOrderRepo SupplyOrderRepository,
	giftCards GiftCardActivator,
	lifecycle Lifecycle,
	txManager TransactionManager,
	timeProvider TimeProvider,
	metrics Metrics,
	currency string,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		verifier:        verifier,
		paymentRepo:     paymentRepo,
		bookingRepo:     bookingRepo,
		supplyOrderRepo: supplyOrderRepo,
		giftCards:       giftCards,
		lifecycle:       lifecycle,
		txManager:       txManager,
		timeProvider:    timeProvider,
		metrics:         metrics,
		currency:        strings.ToUpper(currency),
		logger:          logger,
	}
}

// effects побочные эффекты транзакции, выполняемые после коммита
type effects struct {
	outcome  string
	events   []*domain.BookingEvent
	bookings []*domain.Booking
	warnings []string
}

func (e *effects) add(event *domain.BookingEvent, booking *domain.Booking) {
	if event != nil {
		e.events = append(e.events, event)
	}
	e.bookings = append(e.bookings, booking)
}

// Execute проверяет подпись и применяет событие оплаты
// Подпись проверяется до любого чтения состояния
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := uc.verifier.Verify(req.Signature, req.RawBody); err != nil {
		uc.logger.Warn("ReconcilePayment: webhook rejected: %v", err)
		uc.record("unknown", OutcomeRejected)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event, err := paystack.ParseEvent(req.RawBody)
	if err != nil {
		uc.logger.Warn("ReconcilePayment: %v", err)
		uc.record("unknown", OutcomeRejected)
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	resp := &Response{Event: event.Event}
	if event.Data != nil {
		resp.Reference = event.Data.Reference
	}
	uc.logger.Info("ReconcilePayment: event=%s reference=%s", event.Event, resp.Reference)

	var fx *effects
	switch {
	case event.IsSuccess():
		fx, err = uc.handleSuccess(ctx, event)
	case event.IsFailure():
		fx, err = uc.handleFailure(ctx, event)
	default:
		uc.logger.Info("ReconcilePayment: ignoring unsupported event %s", event.Event)
		fx = &effects{outcome: OutcomeIgnored}
	}
	if err != nil {
		uc.record(event.Event, "error")
		return nil, err
	}

	// После коммита: outbox и календарь, ошибки календаря только предупреждения
	if len(fx.events) > 0 || len(fx.bookings) > 0 {
		fx.warnings = append(fx.warnings, uc.lifecycle.AfterCommit(ctx, fx.events, fx.bookings...)...)
	}

	uc.record(event.Event, fx.outcome)
	uc.logger.Info("ReconcilePayment: event=%s reference=%s outcome=%s", event.Event, resp.Reference, fx.outcome)

	resp.Outcome = fx.outcome
	resp.Warnings = fx.warnings
	return resp, nil
}

func (uc *UseCase) handleSuccess(ctx context.Context, event *paystack.Event) (*effects, error) {
	data := event.Data
	if data == nil || data.Reference == "" || data.Amount == nil {
		uc.logger.Warn("ReconcilePayment: %s missing reference or amount", event.Event)
		return &effects{outcome: OutcomeIgnored}, nil
	}

	currency := data.NormalizedCurrency(uc.currency)
	now := uc.timeProvider.Now()
	var fx *effects

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		fx = &effects{}

		intent, found, err := uc.findIntent(txCtx, data.Reference)
		if err != nil {
			return err
		}
		if !found {
			fx.outcome = OutcomeUnknownReference
			return nil
		}

		if intent.IsSucceeded() {
			uc.logger.Info("ReconcilePayment: reference %s already succeeded, ignoring duplicate", data.Reference)
			fx.outcome = OutcomeDuplicate
			return nil
		}

		if intent.Amount != *data.Amount {
			uc.logger.Warn("ReconcilePayment: amount mismatch for reference %s (expected %d, got %d)",
				data.Reference, intent.Amount, *data.Amount)
			fx.outcome = OutcomeAmountMismatch
			return uc.fail(txCtx, intent, ReasonAmountMismatch, now, fx)
		}

		if currency != strings.ToUpper(intent.Currency) {
			uc.logger.Warn("ReconcilePayment: currency mismatch for reference %s (expected %s, got %s)",
				data.Reference, intent.Currency, currency)
			fx.outcome = OutcomeCurrencyMismatch
			return uc.fail(txCtx, intent, ReasonCurrencyMismatch, now, fx)
		}

		wasFailed := intent.Status == domain.IntentFailed
		intent.Status = domain.IntentSucceeded
		intent.ConfirmedAt = &now
		intent.LastError = nil
		intent.Metadata = mergeMetadata(intent.Metadata, map[string]interface{}{
			"paystackStatus": data.Status,
			"channel":        data.Channel,
			"paidAt":         data.PaidAt,
		})

		if err := uc.settleSubject(txCtx, intent, data, wasFailed, now, fx); err != nil {
			return err
		}

		intent.UpdatedAt = now
		if err := uc.paymentRepo.Update(txCtx, intent); err != nil {
			uc.logger.Error("ReconcilePayment: failed to update intent id=%d: %v", intent.ID, err)
			return fmt.Errorf("%w: ReconcilePayment - update intent: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, uc.translate(err)
	}
	return fx, nil
}

// settleSubject применяет успешную оплату к предмету намерения
func (uc *UseCase) settleSubject(
	ctx context.Context,
	intent *domain.PaymentIntent,
	data *paystack.EventData,
	wasFailed bool,
	now time.Time,
	fx *effects,
) error {
	switch intent.Subject {
	case domain.SubjectBooking:
		if intent.BookingID == nil {
			return fmt.Errorf("%w: intent id=%d has no booking", ErrInternal, intent.ID)
		}
		booking, err := uc.loadBooking(ctx, *intent.BookingID)
		if err != nil {
			return err
		}

		switch {
		case booking.IsAwaitingPayment():
			event, err := uc.lifecycle.Confirm(ctx, booking, now, false, map[string]interface{}{
				"paystackReference": data.Reference,
				"paidAt":            data.PaidAt,
				"channel":           data.Channel,
			})
			if err != nil {
				return err
			}
			fx.add(event, booking)
			fx.outcome = OutcomeConfirmed
		case booking.IsCancelled():
			// Слот уже освобожден, бронирование не восстанавливается
			intent.Metadata["requiresRefund"] = true
			warning := fmt.Sprintf("payment %s succeeded for cancelled booking id=%d, refund required", intent.ProviderRef, booking.ID)
			uc.logger.Warn("ReconcilePayment: %s (intent previously failed: %t)", warning, wasFailed)
			fx.warnings = append(fx.warnings, warning)
			fx.outcome = OutcomeRequiresRefund
		default:
			uc.logger.Info("ReconcilePayment: booking id=%d already %s", booking.ID, booking.Status)
			fx.outcome = OutcomeAlreadySettled
		}

	case domain.SubjectGiftCard:
		if intent.GiftCardID == nil {
			return fmt.Errorf("%w: intent id=%d has no gift card", ErrInternal, intent.ID)
		}
		if err := uc.giftCards.Activate(ctx, *intent.GiftCardID); err != nil {
			uc.logger.Error("ReconcilePayment: failed to activate gift card id=%d: %v", *intent.GiftCardID, err)
			return fmt.Errorf("%w: ReconcilePayment - activate gift card: %v", ErrInternal, err)
		}
		fx.outcome = OutcomeGiftCardActive

	case domain.SubjectSupplyOrder:
		if err := uc.moveSupplyOrder(ctx, intent, domain.SupplyOrderWaitingOnSupplier, now); err != nil {
			return err
		}
		fx.outcome = OutcomeSupplyOrderPaid

	default:
		return fmt.Errorf("%w: intent id=%d has unknown subject %q", ErrInternal, intent.ID, intent.Subject)
	}
	return nil
}

func (uc *UseCase) handleFailure(ctx context.Context, event *paystack.Event) (*effects, error) {
	data := event.Data
	if data == nil || data.Reference == "" {
		uc.logger.Warn("ReconcilePayment: %s missing reference", event.Event)
		return &effects{outcome: OutcomeIgnored}, nil
	}

	reason := "Paystack reported " + event.Event
	now := uc.timeProvider.Now()
	var fx *effects

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		fx = &effects{}

		intent, found, err := uc.findIntent(txCtx, data.Reference)
		if err != nil {
			return err
		}
		if !found {
			fx.outcome = OutcomeUnknownReference
			return nil
		}

		fx.outcome = OutcomeFailed
		return uc.fail(txCtx, intent, reason, now, fx)
	})
	if err != nil {
		return nil, uc.translate(err)
	}
	return fx, nil
}

// fail помечает намерение FAILED и освобождает предмет оплаты
func (uc *UseCase) fail(ctx context.Context, intent *domain.PaymentIntent, reason string, now time.Time, fx *effects) error {
	intent.Status = domain.IntentFailed
	intent.LastError = &reason
	intent.UpdatedAt = now
	if err := uc.paymentRepo.Update(ctx, intent); err != nil {
		uc.logger.Error("ReconcilePayment: failed to mark intent id=%d failed: %v", intent.ID, err)
		return fmt.Errorf("%w: ReconcilePayment - update intent: %v", ErrInternal, err)
	}

	switch intent.Subject {
	case domain.SubjectBooking:
		if intent.BookingID == nil {
			return nil
		}
		booking, err := uc.loadBooking(ctx, *intent.BookingID)
		if err != nil {
			return err
		}
		event, err := uc.lifecycle.ReleaseForPaymentFailure(ctx, booking, reason, now)
		if err != nil {
			return err
		}
		fx.add(event, booking)
	case domain.SubjectSupplyOrder:
		return uc.moveSupplyOrder(ctx, intent, domain.SupplyOrderCancelled, now)
	case domain.SubjectGiftCard:
		uc.logger.Warn("ReconcilePayment: gift card payment %s failed: %s", intent.ProviderRef, reason)
	}
	return nil
}

// moveSupplyOrder переводит заказ только из REQUIRES_PAYMENT
func (uc *UseCase) moveSupplyOrder(ctx context.Context, intent *domain.PaymentIntent, to domain.SupplyOrderStatus, now time.Time) error {
	if intent.SupplyOrderID == nil {
		return fmt.Errorf("%w: intent id=%d has no supply order", ErrInternal, intent.ID)
	}

	order, err := uc.supplyOrderRepo.GetByID(ctx, *intent.SupplyOrderID)
	if err != nil {
		uc.logger.Error("ReconcilePayment: failed to get supply order id=%d: %v", *intent.SupplyOrderID, err)
		return fmt.Errorf("%w: ReconcilePayment - get supply order: %v", ErrInternal, err)
	}
	if order.Status != domain.SupplyOrderRequiresPayment {
		uc.logger.Info("ReconcilePayment: supply order id=%d already %s", order.ID, order.Status)
		return nil
	}

	order.Status = to
	order.UpdatedAt = now
	if err := uc.supplyOrderRepo.UpdateStatus(ctx, order); err != nil {
		uc.logger.Error("ReconcilePayment: failed to update supply order id=%d: %v", order.ID, err)
		return fmt.Errorf("%w: ReconcilePayment - update supply order: %v", ErrInternal, err)
	}
	uc.logger.Info("ReconcilePayment: supply order id=%d is now %s", order.ID, order.Status)
	return nil
}

func (uc *UseCase) findIntent(ctx context.Context, reference string) (*domain.PaymentIntent, bool, error) {
	intent, err := uc.paymentRepo.GetByProviderRef(ctx, reference)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrIntentNotFound) {
			uc.logger.Warn("ReconcilePayment: reference %s not recognised", reference)
			return nil, false, nil
		}
		uc.logger.Error("ReconcilePayment: failed to get intent by reference %s: %v", reference, err)
		return nil, false, fmt.Errorf("%w: ReconcilePayment - get intent: %v", ErrInternal, err)
	}
	return intent, true, nil
}

func (uc *UseCase) loadBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		uc.logger.Error("ReconcilePayment: failed to get booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: ReconcilePayment - get booking: %v", ErrInternal, err)
	}
	return booking, nil
}

func (uc *UseCase) translate(err error) error {
	if errors.Is(err, ErrInternal) {
		return err
	}
	uc.logger.Error("ReconcilePayment: transaction error: %v", err)
	return fmt.Errorf("%w: ReconcilePayment - transaction error: %v", ErrInternal, err)
}

func (uc *UseCase) record(event, outcome string) {
	if uc.metrics != nil {
		uc.metrics.RecordWebhook(event, outcome)
	}
}

func mergeMetadata(existing, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(existing)+len(extra))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
