package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

// Repository репозиторий outbox доменных событий (таблица booking_events)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр outbox репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert записывает событие
// Вызывается в транзакции, породившей событие: откат транзакции откатывает и событие
func (r *Repository) Insert(ctx context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: Insert - encode payload: %w", ErrPayload, err)
	}

	query, args, err := psqlbuilder.Insert("booking_events").
		Columns(
			"type",
			"booking_id",
			"vendor_id",
			"service_id",
			"reference",
			"status",
			"payload",
			"occurred_at",
		).
		Values(
			event.Type,
			event.BookingID,
			event.VendorID,
			event.ServiceID,
			event.Reference,
			event.Status,
			string(payload),
			event.OccurredAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID); err != nil {
		return nil, fmt.Errorf("%w: Insert - execute insert: %w", ErrExecQuery, err)
	}

	return event, nil
}

// ListPending возвращает неопубликованные события в порядке записи
// Внутри транзакции строки блокируются с SKIP LOCKED, чтобы параллельные релеи не дублировали работу
func (r *Repository) ListPending(ctx context.Context, limit int) ([]*domain.BookingEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"type",
		"booking_id",
		"vendor_id",
		"service_id",
		"reference",
		"status",
		"payload",
		"occurred_at",
		"published_at",
		"attempts",
		"last_error",
	).
		From("booking_events").
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("id ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.BookingEvent, 0)
	for rows.Next() {
		var e domain.BookingEvent
		var payload []byte
		err := rows.Scan(
			&e.ID,
			&e.Type,
			&e.BookingID,
			&e.VendorID,
			&e.ServiceID,
			&e.Reference,
			&e.Status,
			&payload,
			&e.OccurredAt,
			&e.PublishedAt,
			&e.Attempts,
			&e.LastError,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPending - scan event: %w", ErrScanRow, err)
		}

		e.Payload = map[string]interface{}{}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("%w: ListPending - decode payload of event %d: %w", ErrPayload, e.ID, err)
			}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPending - rows error: %w", ErrScanRow, err)
	}

	return events, nil
}

// MarkPublished отмечает событие опубликованным
func (r *Repository) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("published_at", publishedAt).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %w", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "MarkPublished", query, args)
}

// MarkFailed фиксирует неудачную попытку публикации
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", reason).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %w", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "MarkFailed", query, args)
}

func (r *Repository) execOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}
