package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/availability"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	paymentRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/payment"
)

// Имена обходов для batch
const (
	JobCompletePast   = "complete-past"
	JobExpirePayments = "expire-payments"
	JobReminders      = "reminders"
	JobRelayOutbox    = "relay-outbox"
)

// Jobs все обходы в порядке запуска
var Jobs = []string{JobCompletePast, JobExpirePayments, JobReminders, JobRelayOutbox}

// PaymentExpiredReason причина отмены неоплаченного бронирования
const PaymentExpiredReason = "Payment window expired"

const defaultBatchSize = 100

// Options параметры обходов
type Options struct {
	BatchSize int
	// AwaitingPaymentTTL 0 отключает истечение неоплаченных бронирований
	AwaitingPaymentTTL time.Duration
	ReminderLead       time.Duration
	OutboxBatchSize    int
}

// Sweeper фоновые обходы бронирований
// Каждое бронирование обрабатывается в собственной транзакции: ошибка одного не откатывает остальные
type Sweeper struct {
	sweepRepo    SweepRepository
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	lifecycle    Lifecycle
	relay        OutboxRelay
	txManager    TransactionManager
	timeProvider TimeProvider
	opts         Options
	logger       Logger
}

// NewSweeper создает новый экземпляр обходчика
func NewSweeper(
	sweepRepo SweepRepository,
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	lifecycle Lifecycle,
	relay OutboxRelay,
	txManager TransactionManager,
	timeProvider TimeProvider,
	opts Options,
	logger Logger,
) *Sweeper {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.OutboxBatchSize <= 0 {
		opts.OutboxBatchSize = defaultBatchSize
	}
	return &Sweeper{
		sweepRepo:    sweepRepo,
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		lifecycle:    lifecycle,
		relay:        relay,
		txManager:    txManager,
		timeProvider: timeProvider,
		opts:         opts,
		logger:       logger,
	}
}

// Run запускает обход по имени и возвращает количество обработанных записей
func (s *Sweeper) Run(ctx context.Context, job string) (int, error) {
	switch job {
	case JobCompletePast:
		return s.CompletePast(ctx)
	case JobExpirePayments:
		return s.ExpirePayments(ctx)
	case JobReminders:
		return s.SendReminders(ctx)
	case JobRelayOutbox:
		return s.RelayOutbox(ctx)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJob, job)
}

// CompletePast завершает CONFIRMED бронирования, закончившиеся сегодня (UTC)
func (s *Sweeper) CompletePast(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()
	ids, err := s.sweepRepo.PastConfirmedIDs(ctx, availability.StartOfDayUTC(now), now, s.opts.BatchSize)
	if err != nil {
		s.logger.Error("CompletePast: failed to select candidates: %v", err)
		return 0, fmt.Errorf("%w: CompletePast - select: %v", ErrSweep, err)
	}

	return s.each(ctx, "CompletePast", ids, func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error) {
		if b.Status != domain.StatusConfirmed || b.ScheduledEnd.After(now) {
			return nil, nil
		}
		return s.lifecycle.Complete(txCtx, b, now, map[string]interface{}{"bulkComplete": true})
	})
}

// ExpirePayments отменяет AWAITING_PAYMENT бронирования старше TTL
// Путь тот же, что у неуспешного вебхука: намерение FAILED, бронирование CANCELLED (SYSTEM)
func (s *Sweeper) ExpirePayments(ctx context.Context) (int, error) {
	if s.opts.AwaitingPaymentTTL <= 0 {
		s.logger.Info("ExpirePayments: disabled, awaiting payment ttl is 0")
		return 0, nil
	}

	now := s.timeProvider.Now()
	ids, err := s.sweepRepo.StaleAwaitingPaymentIDs(ctx, now.Add(-s.opts.AwaitingPaymentTTL), s.opts.BatchSize)
	if err != nil {
		s.logger.Error("ExpirePayments: failed to select candidates: %v", err)
		return 0, fmt.Errorf("%w: ExpirePayments - select: %v", ErrSweep, err)
	}

	return s.each(ctx, "ExpirePayments", ids, func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error) {
		if !b.IsAwaitingPayment() {
			return nil, nil
		}

		intent, err := s.paymentRepo.GetLatestByBookingID(txCtx, b.ID)
		switch {
		case errors.Is(err, paymentRepo.ErrIntentNotFound):
		case err != nil:
			return nil, err
		case intent.IsSucceeded():
			// Оплата прошла, вебхук еще не обработан: не трогаем
			s.logger.Warn("ExpirePayments: booking id=%d has succeeded intent, skipping", b.ID)
			return nil, nil
		default:
			reason := PaymentExpiredReason
			intent.Status = domain.IntentFailed
			intent.LastError = &reason
			intent.UpdatedAt = now
			if err := s.paymentRepo.Update(txCtx, intent); err != nil {
				return nil, err
			}
		}

		return s.lifecycle.ReleaseForPaymentFailure(txCtx, b, PaymentExpiredReason, now)
	})
}

// SendReminders отмечает напоминания для CONFIRMED бронирований, начинающихся в [now, now+lead]
func (s *Sweeper) SendReminders(ctx context.Context) (int, error) {
	if s.opts.ReminderLead <= 0 {
		s.logger.Info("SendReminders: disabled, reminder lead is 0")
		return 0, nil
	}

	now := s.timeProvider.Now()
	ids, err := s.sweepRepo.DueReminderIDs(ctx, now, now.Add(s.opts.ReminderLead), s.opts.BatchSize)
	if err != nil {
		s.logger.Error("SendReminders: failed to select candidates: %v", err)
		return 0, fmt.Errorf("%w: SendReminders - select: %v", ErrSweep, err)
	}

	return s.each(ctx, "SendReminders", ids, func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error) {
		if b.Status != domain.StatusConfirmed || b.ReminderSentAt != nil {
			return nil, nil
		}
		return s.lifecycle.MarkReminderSent(txCtx, b, now)
	})
}

// RelayOutbox публикует события, не доставленные после коммита
func (s *Sweeper) RelayOutbox(ctx context.Context) (int, error) {
	pending, err := s.sweepRepo.PendingOutboxCount(ctx)
	if err != nil {
		s.logger.Error("RelayOutbox: failed to count pending events: %v", err)
		return 0, fmt.Errorf("%w: RelayOutbox - count: %v", ErrSweep, err)
	}
	if pending == 0 {
		return 0, nil
	}

	s.logger.Info("RelayOutbox: %d events pending", pending)
	published, err := s.relay.Relay(ctx, s.opts.OutboxBatchSize)
	if err != nil {
		return published, fmt.Errorf("%w: RelayOutbox - %v", ErrSweep, err)
	}
	return published, nil
}

// each применяет переход к каждому бронированию в отдельной транзакции
// apply возвращает nil событие, если бронирование уже не подходит под условия обхода
func (s *Sweeper) each(
	ctx context.Context,
	op string,
	ids []int64,
	apply func(txCtx context.Context, b *domain.Booking) (*domain.BookingEvent, error),
) (int, error) {
	processed := 0
	var errs []error

	for _, id := range ids {
		var booking *domain.Booking
		var event *domain.BookingEvent

		err := s.txManager.Do(ctx, func(txCtx context.Context) error {
			booking, event = nil, nil

			b, err := s.bookingRepo.GetByID(txCtx, id)
			if err != nil {
				return err
			}
			e, err := apply(txCtx, b)
			if err != nil {
				return err
			}
			booking, event = b, e
			return nil
		})
		if err != nil {
			s.logger.Error("%s: booking id=%d failed: %v", op, id, err)
			errs = append(errs, fmt.Errorf("booking %d: %w", id, err))
			continue
		}
		if event == nil {
			continue
		}

		processed++
		for _, warning := range s.lifecycle.AfterCommit(ctx, []*domain.BookingEvent{event}, booking) {
			s.logger.Warn("%s: booking id=%d: %s", op, id, warning)
		}
	}

	s.logger.Info("%s: processed %d of %d candidates", op, processed, len(ids))
	if len(errs) > 0 {
		return processed, fmt.Errorf("%w: %s - %v", ErrSweep, op, errors.Join(errs...))
	}
	return processed, nil
}
