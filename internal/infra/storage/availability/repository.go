package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

// Repository репозиторий недельных окон и overrides вендора
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListWeeklyByVendor возвращает недельные окна вендора, отсортированные по дню и началу
func (r *Repository) ListWeeklyByVendor(ctx context.Context, vendorID int64) ([]domain.WeeklyWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"vendor_id",
		"day_of_week",
		"start_minute",
		"end_minute",
	).
		From("weekly_availability").
		Where(squirrel.Eq{"vendor_id": vendorID}).
		OrderBy("day_of_week ASC", "start_minute ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWeeklyByVendor - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWeeklyByVendor - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]domain.WeeklyWindow, 0)
	for rows.Next() {
		var w domain.WeeklyWindow
		if err := rows.Scan(&w.ID, &w.VendorID, &w.DayOfWeek, &w.StartMinute, &w.EndMinute); err != nil {
			return nil, fmt.Errorf("%w: ListWeeklyByVendor - scan window: %w", ErrScanRow, err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWeeklyByVendor - rows error: %w", ErrScanRow, err)
	}

	return windows, nil
}

// ReplaceWeekly заменяет все недельные окна вендора (delete-all + insert-all)
// Должен вызываться внутри транзакции, иначе клиент может увидеть вендора без окон
func (r *Repository) ReplaceWeekly(ctx context.Context, vendorID int64, windows []domain.WeeklyWindow) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("weekly_availability").
		Where(squirrel.Eq{"vendor_id": vendorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeekly - build delete query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceWeekly - execute delete: %w", ErrExecQuery, err)
	}

	if len(windows) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert("weekly_availability").
		Columns("vendor_id", "day_of_week", "start_minute", "end_minute")
	for _, w := range windows {
		insert = insert.Values(vendorID, w.DayOfWeek, w.StartMinute, w.EndMinute)
	}

	insertQuery, insertArgs, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeekly - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceWeekly - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// CreateOverride создает override
func (r *Repository) CreateOverride(ctx context.Context, o *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_overrides").
		Columns("vendor_id", "starts_at", "ends_at", "kind", "reason").
		Values(o.VendorID, o.StartsAt, o.EndsAt, o.Kind, o.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateOverride - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&o.ID, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateOverride - execute insert: %w", ErrExecQuery, err)
	}

	return o, nil
}

// GetOverrideByID получает override по ID
func (r *Repository) GetOverrideByID(ctx context.Context, id int64) (*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := overrideSelect().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrideByID - build select query: %w", ErrBuildQuery, err)
	}

	o, err := scanOverride(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrideByID - scan override: %w", ErrScanRow, err)
	}

	return o, nil
}

// ListOverridesInRange возвращает overrides вендора, пересекающие [from, to)
// Порядок стабильный: по началу, затем по ID
func (r *Repository) ListOverridesInRange(ctx context.Context, vendorID int64, from, to time.Time) ([]domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := overrideSelect().
		Where(squirrel.Eq{"vendor_id": vendorID}).
		Where(squirrel.Lt{"starts_at": to}).
		Where(squirrel.Gt{"ends_at": from}).
		OrderBy("starts_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverridesInRange - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverridesInRange - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make([]domain.AvailabilityOverride, 0)
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListOverridesInRange - scan override: %w", ErrScanRow, err)
		}
		overrides = append(overrides, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOverridesInRange - rows error: %w", ErrScanRow, err)
	}

	return overrides, nil
}

// DeleteOverride удаляет override
func (r *Repository) DeleteOverride(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_overrides").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrOverrideNotFound
	}

	return nil
}

func overrideSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"vendor_id",
		"starts_at",
		"ends_at",
		"kind",
		"reason",
		"created_at",
	).From("availability_overrides")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOverride(row rowScanner) (*domain.AvailabilityOverride, error) {
	var o domain.AvailabilityOverride
	err := row.Scan(
		&o.ID,
		&o.VendorID,
		&o.StartsAt,
		&o.EndsAt,
		&o.Kind,
		&o.Reason,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.StartsAt = o.StartsAt.UTC()
	o.EndsAt = o.EndsAt.UTC()
	return &o, nil
}
