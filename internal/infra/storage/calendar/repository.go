package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

// Repository репозиторий записей календаря
// Записи производные: их всегда можно пересобрать из бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория календаря
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или обновляет запись по ключу (booking_id, owner_type)
func (r *Repository) Upsert(ctx context.Context, entry *domain.CalendarEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("calendar_entries").
		Columns(
			"booking_id",
			"owner_type",
			"owner_id",
			"vendor_id",
			"service_id",
			"starts_at",
			"ends_at",
			"status",
			"updated_at",
		).
		Values(
			entry.BookingID,
			entry.OwnerType,
			entry.OwnerID,
			entry.VendorID,
			entry.ServiceID,
			entry.StartsAt,
			entry.EndsAt,
			entry.Status,
			entry.UpdatedAt,
		).
		Suffix(`ON CONFLICT (booking_id, owner_type) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			vendor_id = EXCLUDED.vendor_id,
			service_id = EXCLUDED.service_id,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// Delete удаляет запись владельца для бронирования (отсутствие записи не ошибка)
func (r *Repository) Delete(ctx context.Context, bookingID int64, ownerType domain.CalendarOwnerType) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("calendar_entries").
		Where(squirrel.Eq{"booking_id": bookingID, "owner_type": ownerType}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	return nil
}

// ListByOwner возвращает записи владельца, начинающиеся в [from, to)
func (r *Repository) ListByOwner(
	ctx context.Context,
	ownerType domain.CalendarOwnerType,
	ownerID int64,
	from, to time.Time,
) ([]*domain.CalendarEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"owner_type",
		"owner_id",
		"vendor_id",
		"service_id",
		"starts_at",
		"ends_at",
		"status",
		"updated_at",
	).
		From("calendar_entries").
		Where(squirrel.Eq{"owner_type": ownerType, "owner_id": ownerID}).
		Where(squirrel.GtOrEq{"starts_at": from}).
		Where(squirrel.Lt{"starts_at": to}).
		OrderBy("starts_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.CalendarEntry, 0)
	for rows.Next() {
		var e domain.CalendarEntry
		err := rows.Scan(
			&e.ID,
			&e.BookingID,
			&e.OwnerType,
			&e.OwnerID,
			&e.VendorID,
			&e.ServiceID,
			&e.StartsAt,
			&e.EndsAt,
			&e.Status,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByOwner - scan entry: %w", ErrScanRow, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByOwner - rows error: %w", ErrScanRow, err)
	}

	return entries, nil
}
