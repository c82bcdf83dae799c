package seat

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

// Repository репозиторий мест (кресел/сотрудников) вендора
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория мест
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListEligibleActive возвращает активные места вендора, подходящие для услуги
// Место подходит, если привязано к услуге или не привязано ни к одной.
// Порядок стабильный: по дате создания, затем по ID.
func (r *Repository) ListEligibleActive(ctx context.Context, vendorID, serviceID int64) ([]*domain.Seat, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.vendor_id",
		"s.label",
		"s.capacity",
		"s.staff_id",
		"s.is_active",
		"s.created_at",
		"COALESCE(array_agg(ss.service_id) FILTER (WHERE ss.service_id IS NOT NULL), '{}') AS service_ids",
	).
		From("seats s").
		LeftJoin("seat_services ss ON ss.seat_id = s.id").
		Where(squirrel.Eq{"s.vendor_id": vendorID, "s.is_active": true}).
		GroupBy("s.id").
		OrderBy("s.created_at ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListEligibleActive - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEligibleActive - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	seats := make([]*domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		var serviceIDs []int64
		err := rows.Scan(
			&s.ID,
			&s.VendorID,
			&s.Label,
			&s.Capacity,
			&s.StaffID,
			&s.IsActive,
			&s.CreatedAt,
			pq.Array(&serviceIDs),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListEligibleActive - scan seat: %w", ErrScanRow, err)
		}
		s.ServiceIDs = serviceIDs

		if s.IsEligibleFor(serviceID) {
			seats = append(seats, &s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEligibleActive - rows error: %w", ErrScanRow, err)
	}

	return seats, nil
}
