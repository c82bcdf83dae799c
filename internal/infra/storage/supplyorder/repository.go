package supplyorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

// Repository репозиторий заказов поставки
// Здесь меняется только статус: остальной жизненный цикл ведет внешний модуль
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заказов поставки
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает заказ по ID (FOR UPDATE внутри транзакции)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SupplyOrder, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "vendor_id", "status", "updated_at").
		From("supply_orders").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var order domain.SupplyOrder
	err = executor.QueryRowContext(ctx, query, args...).Scan(&order.ID, &order.VendorID, &order.Status, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSupplyOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan supply order: %w", ErrScanRow, err)
	}

	return &order, nil
}

// UpdateStatus обновляет статус заказа
func (r *Repository) UpdateStatus(ctx context.Context, order *domain.SupplyOrder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("supply_orders").
		Set("status", order.Status).
		Set("updated_at", order.UpdatedAt).
		Where(squirrel.Eq{"id": order.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSupplyOrderNotFound
	}

	return nil
}
