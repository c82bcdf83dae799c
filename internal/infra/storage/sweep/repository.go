package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Repository выборка кандидатов для фоновых обходов
// Только чтение: переходы выполняются сервисами по одному бронированию в транзакции
type Repository struct {
	db *DB
}

// NewRepository создает новый экземпляр репозитория обходов
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// PastConfirmedIDs возвращает CONFIRMED бронирования, закончившиеся в [dayStart, now)
func (r *Repository) PastConfirmedIDs(ctx context.Context, dayStart, now time.Time, limit int) ([]int64, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "SweepRepository.PastConfirmedIDs")
	defer seg.Close(nil)

	query := `
		SELECT id
		FROM bookings
		WHERE status = 'CONFIRMED'
		  AND scheduled_end < $1
		  AND scheduled_end >= $2
		ORDER BY scheduled_end ASC, id ASC
		LIMIT $3`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, now, dayStart, limit); err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("%w: PastConfirmedIDs - select: %w", ErrExecQuery, err)
	}

	return ids, nil
}

// StaleAwaitingPaymentIDs возвращает AWAITING_PAYMENT бронирования, созданные раньше createdBefore
func (r *Repository) StaleAwaitingPaymentIDs(ctx context.Context, createdBefore time.Time, limit int) ([]int64, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "SweepRepository.StaleAwaitingPaymentIDs")
	defer seg.Close(nil)

	query := `
		SELECT id
		FROM bookings
		WHERE status = 'AWAITING_PAYMENT'
		  AND created_at < $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, createdBefore, limit); err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("%w: StaleAwaitingPaymentIDs - select: %w", ErrExecQuery, err)
	}

	return ids, nil
}

// DueReminderIDs возвращает CONFIRMED бронирования без напоминания, начинающиеся в [now, until]
func (r *Repository) DueReminderIDs(ctx context.Context, now, until time.Time, limit int) ([]int64, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "SweepRepository.DueReminderIDs")
	defer seg.Close(nil)

	query := `
		SELECT id
		FROM bookings
		WHERE status = 'CONFIRMED'
		  AND reminder_sent_at IS NULL
		  AND scheduled_start >= $1
		  AND scheduled_start <= $2
		ORDER BY scheduled_start ASC, id ASC
		LIMIT $3`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, now, until, limit); err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("%w: DueReminderIDs - select: %w", ErrExecQuery, err)
	}

	return ids, nil
}

// PendingOutboxCount возвращает количество неопубликованных событий
func (r *Repository) PendingOutboxCount(ctx context.Context) (int, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "SweepRepository.PendingOutboxCount")
	defer seg.Close(nil)

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM booking_events WHERE published_at IS NULL`); err != nil {
		seg.Close(err)
		return 0, fmt.Errorf("%w: PendingOutboxCount - select: %w", ErrExecQuery, err)
	}

	return count, nil
}
