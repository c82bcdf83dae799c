package service

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

// Repository репозиторий каталога: вендоры и их услуги
// Таблицы ведутся внешними модулями, здесь только чтение
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetServiceByID получает услугу по ID
func (r *Repository) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"vendor_id",
		"name",
		"base_price",
		"duration_minutes",
		"buffer_minutes",
		"deposit_percent",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - build select query: %w", ErrBuildQuery, err)
	}

	var s domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.VendorID,
		&s.Name,
		&s.BasePrice,
		&s.DurationMinutes,
		&s.BufferMinutes,
		&s.DepositPercent,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceByID - scan service: %w", ErrScanRow, err)
	}

	return &s, nil
}

// GetVendorByID получает вендора по ID
func (r *Repository) GetVendorByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"owner_user_id",
		"name",
		"status",
		"created_at",
	).
		From("vendors").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetVendorByID - build select query: %w", ErrBuildQuery, err)
	}

	var v domain.Vendor
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&v.ID,
		&v.OwnerUserID,
		&v.Name,
		&v.Status,
		&v.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetVendorByID - scan vendor: %w", ErrScanRow, err)
	}

	return &v, nil
}
