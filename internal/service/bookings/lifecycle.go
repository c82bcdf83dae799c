package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Lifecycle переходы статусов бронирования
//
// Методы Lifecycle вызываются внутри транзакции вызывающего кода:
// они обновляют строку бронирования и пишут событие в outbox.
// Публикация событий и синхронизация календаря выполняются после коммита через AfterCommit.
type Lifecycle struct {
	bookingRepo BookingRepository
	giftCards   GiftCardRefunder
	events      EventRecorder
	calendar    CalendarProjector
	metrics     Metrics
	minNotice   time.Duration
	logger      Logger
}

// NewLifecycle создает новый экземпляр машины состояний бронирования
func NewLifecycle(
	bookingRepo BookingRepository,
	giftCards GiftCardRefunder,
	events EventRecorder,
	calendar CalendarProjector,
	metrics Metrics,
	minNoticeHours int,
	logger Logger,
) *Lifecycle {
	if minNoticeHours <= 0 {
		minNoticeHours = domain.DefaultMinModificationNoticeHours
	}
	return &Lifecycle{
		bookingRepo: bookingRepo,
		giftCards:   giftCards,
		events:      events,
		calendar:    calendar,
		metrics:     metrics,
		minNotice:   time.Duration(minNoticeHours) * time.Hour,
		logger:      logger,
	}
}

// CheckNotice проверяет, что до начала бронирования осталось не меньше минимального срока
func (l *Lifecycle) CheckNotice(booking *domain.Booking, now time.Time) error {
	if booking.ScheduledStart.Sub(now) < l.minNotice {
		return fmt.Errorf("%w: changes are allowed %d+ hours before the appointment",
			ErrPolicyWindow, int(l.minNotice.Hours()))
	}
	return nil
}

// Emit пишет событие о текущем состоянии бронирования без смены статуса
func (l *Lifecycle) Emit(
	ctx context.Context,
	eventType domain.EventType,
	booking *domain.Booking,
	now time.Time,
	payload map[string]interface{},
) (*domain.BookingEvent, error) {
	return l.events.Record(ctx, domain.NewBookingEvent(eventType, booking, now, payload))
}

// Confirm переводит бронирование, ожидающее оплаты, в CONFIRMED
func (l *Lifecycle) Confirm(
	ctx context.Context,
	booking *domain.Booking,
	now time.Time,
	settleBalance bool,
	payload map[string]interface{},
) (*domain.BookingEvent, error) {
	if !booking.IsAwaitingPayment() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, domain.StatusConfirmed)
	}

	booking.Status = domain.StatusConfirmed
	booking.PaidAt = &now
	if settleBalance {
		booking.SettleBalance()
	}
	return l.apply(ctx, booking, now, domain.EventBookingConfirmed, payload)
}

// Cancel отменяет активное бронирование и возвращает баланс подарочной карты
func (l *Lifecycle) Cancel(
	ctx context.Context,
	booking *domain.Booking,
	actor domain.CancellationActor,
	reason *string,
	now time.Time,
) (*domain.BookingEvent, error) {
	if booking.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	if err := l.markCancelled(ctx, booking, actor, reason, now); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"actor":  string(actor),
		"reason": reason,
	}
	return l.apply(ctx, booking, now, domain.EventBookingCancelled, payload)
}

// ReleaseForPaymentFailure фиксирует неуспешную оплату
// Бронирование, еще ожидающее оплаты, отменяется (слот освобождается), иначе статус не меняется
func (l *Lifecycle) ReleaseForPaymentFailure(
	ctx context.Context,
	booking *domain.Booking,
	reason string,
	now time.Time,
) (*domain.BookingEvent, error) {
	slotReleased := false
	if booking.IsAwaitingPayment() {
		if err := l.markCancelled(ctx, booking, domain.ActorSystem, &reason, now); err != nil {
			return nil, err
		}
		booking.UpdatedAt = now
		if err := l.bookingRepo.Update(ctx, booking); err != nil {
			l.logger.Error("ReleaseForPaymentFailure: failed to update booking id=%d: %v", booking.ID, err)
			return nil, fmt.Errorf("%w: ReleaseForPaymentFailure - update booking: %v", ErrInternal, err)
		}
		l.recordTransition(booking.Status)
		slotReleased = true
	}

	return l.Emit(ctx, domain.EventBookingPaymentFailed, booking, now, map[string]interface{}{
		"reason":       reason,
		"slotReleased": slotReleased,
	})
}

// Complete переводит подтвержденное бронирование в COMPLETED
func (l *Lifecycle) Complete(
	ctx context.Context,
	booking *domain.Booking,
	now time.Time,
	payload map[string]interface{},
) (*domain.BookingEvent, error) {
	if !booking.Status.CanTransitionTo(domain.StatusCompleted) {
		return nil, fmt.Errorf("%w: only confirmed bookings can be completed", ErrInvalidTransition)
	}

	booking.Status = domain.StatusCompleted
	booking.CompletedAt = &now
	return l.apply(ctx, booking, now, domain.EventBookingCompleted, payload)
}

// MarkNoShow переводит подтвержденное бронирование в NO_SHOW
func (l *Lifecycle) MarkNoShow(ctx context.Context, booking *domain.Booking, now time.Time) (*domain.BookingEvent, error) {
	if !booking.Status.CanTransitionTo(domain.StatusNoShow) {
		return nil, fmt.Errorf("%w: only confirmed bookings can be marked as no-show", ErrInvalidTransition)
	}

	booking.Status = domain.StatusNoShow
	booking.CompletedAt = nil
	return l.apply(ctx, booking, now, domain.EventBookingNoShow, nil)
}

// Reschedule переносит бронирование на новый интервал
// Доступность нового слота проверяется вызывающим кодом в той же транзакции
func (l *Lifecycle) Reschedule(
	ctx context.Context,
	booking *domain.Booking,
	newStart, newEnd time.Time,
	seatID, staffID *int64,
	now time.Time,
) (*domain.BookingEvent, error) {
	if !booking.CanBeRescheduled() {
		return nil, fmt.Errorf("%w: only active bookings can be rescheduled", ErrInvalidTransition)
	}

	payload := map[string]interface{}{
		"previousStart": booking.ScheduledStart.UTC().Format(time.RFC3339),
		"previousEnd":   booking.ScheduledEnd.UTC().Format(time.RFC3339),
	}

	booking.ScheduledStart = newStart
	booking.ScheduledEnd = newEnd
	booking.SeatID = seatID
	booking.StaffID = staffID
	booking.RescheduledAt = &now
	booking.RescheduleCount++
	booking.ReminderSentAt = nil
	return l.apply(ctx, booking, now, domain.EventBookingRescheduled, payload)
}

// MarkReminderSent отмечает отправку напоминания
func (l *Lifecycle) MarkReminderSent(ctx context.Context, booking *domain.Booking, now time.Time) (*domain.BookingEvent, error) {
	if booking.Status != domain.StatusConfirmed || booking.ReminderSentAt != nil {
		return nil, fmt.Errorf("%w: reminder is not due", ErrInvalidTransition)
	}

	booking.ReminderSentAt = &now
	booking.UpdatedAt = now
	if err := l.bookingRepo.Update(ctx, booking); err != nil {
		l.logger.Error("MarkReminderSent: failed to update booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: MarkReminderSent - update booking: %v", ErrInternal, err)
	}
	return l.Emit(ctx, domain.EventBookingReminder, booking, now, map[string]interface{}{
		"scheduledStart": booking.ScheduledStart.UTC().Format(time.RFC3339),
	})
}

// AfterCommit публикует события и синхронизирует календарь
// Возвращает предупреждения об ошибках синхронизации, переход при этом уже сохранен
func (l *Lifecycle) AfterCommit(ctx context.Context, events []*domain.BookingEvent, bookings ...*domain.Booking) []string {
	l.events.Flush(ctx, events)

	if len(bookings) == 0 {
		return nil
	}
	if err := l.calendar.SyncBookings(ctx, bookings); err != nil {
		l.logger.Error("AfterCommit: calendar sync failed: %v", err)
		return []string{fmt.Sprintf("calendar sync failed: %v", err)}
	}
	return nil
}

func (l *Lifecycle) apply(
	ctx context.Context,
	booking *domain.Booking,
	now time.Time,
	eventType domain.EventType,
	payload map[string]interface{},
) (*domain.BookingEvent, error) {
	booking.UpdatedAt = now
	if err := l.bookingRepo.Update(ctx, booking); err != nil {
		l.logger.Error("transition: failed to update booking id=%d to %s: %v", booking.ID, booking.Status, err)
		return nil, fmt.Errorf("%w: transition - update booking: %v", ErrInternal, err)
	}
	l.recordTransition(booking.Status)

	event, err := l.Emit(ctx, eventType, booking, now, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: transition - record event: %v", ErrInternal, err)
	}
	return event, nil
}

func (l *Lifecycle) markCancelled(
	ctx context.Context,
	booking *domain.Booking,
	actor domain.CancellationActor,
	reason *string,
	now time.Time,
) error {
	if !booking.Status.CanTransitionTo(domain.StatusCancelled) {
		return fmt.Errorf("%w: %s bookings cannot be cancelled", ErrInvalidTransition, booking.Status)
	}

	refunded, err := l.giftCards.Refund(ctx, booking.ID)
	if err != nil {
		l.logger.Error("cancel: failed to refund gift card for booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: cancel - refund gift card: %v", ErrInternal, err)
	}
	if refunded > 0 {
		l.logger.Info("cancel: refunded %d to gift card for booking id=%d", refunded, booking.ID)
	}

	booking.Status = domain.StatusCancelled
	booking.CancelledAt = &now
	booking.CancelledBy = &actor
	booking.CancellationReason = reason
	return nil
}

func (l *Lifecycle) recordTransition(status domain.BookingStatus) {
	if l.metrics != nil {
		l.metrics.RecordTransition(string(status))
	}
}
