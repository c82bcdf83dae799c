package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

var intentColumns = []string{
	"id",
	"subject",
	"booking_id",
	"gift_card_id",
	"supply_order_id",
	"provider",
	"provider_ref",
	"amount",
	"currency",
	"status",
	"last_error",
	"metadata",
	"confirmed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий платежных намерений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежных намерений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает платежное намерение
func (r *Repository) Create(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentIntent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	metadata, err := encodeMetadata(intent.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - encode metadata: %w", ErrMetadata, err)
	}

	query, args, err := psqlbuilder.Insert("payment_intents").
		Columns(
			"subject",
			"booking_id",
			"gift_card_id",
			"supply_order_id",
			"provider",
			"provider_ref",
			"amount",
			"currency",
			"status",
			"metadata",
			"created_at",
			"updated_at",
		).
		Values(
			intent.Subject,
			intent.BookingID,
			intent.GiftCardID,
			intent.SupplyOrderID,
			intent.Provider,
			intent.ProviderRef,
			intent.Amount,
			intent.Currency,
			intent.Status,
			metadata,
			intent.CreatedAt,
			intent.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&intent.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateReference
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return intent, nil
}

// GetByProviderRef получает намерение по ссылке провайдера
// Внутри транзакции строка блокируется: вебхуки по одной ссылке обрабатываются последовательно
func (r *Repository) GetByProviderRef(ctx context.Context, providerRef string) (*domain.PaymentIntent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(intentColumns...).
		From("payment_intents").
		Where(squirrel.Eq{"provider_ref": providerRef})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderRef - build select query: %w", ErrBuildQuery, err)
	}

	intent, err := scanIntent(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderRef - scan intent: %w", ErrScanRow, err)
	}

	return intent, nil
}

// GetLatestByBookingID получает последнее намерение бронирования
func (r *Repository) GetLatestByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentIntent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(intentColumns...).
		From("payment_intents").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLatestByBookingID - build select query: %w", ErrBuildQuery, err)
	}

	intent, err := scanIntent(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLatestByBookingID - scan intent: %w", ErrScanRow, err)
	}

	return intent, nil
}

// Update сохраняет статус, ошибку и metadata намерения
func (r *Repository) Update(ctx context.Context, intent *domain.PaymentIntent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	metadata, err := encodeMetadata(intent.Metadata)
	if err != nil {
		return fmt.Errorf("%w: Update - encode metadata: %w", ErrMetadata, err)
	}

	query, args, err := psqlbuilder.Update("payment_intents").
		Set("status", intent.Status).
		Set("last_error", intent.LastError).
		Set("metadata", metadata).
		Set("confirmed_at", intent.ConfirmedAt).
		Set("updated_at", intent.UpdatedAt).
		Where(squirrel.Eq{"id": intent.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrIntentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIntent(row rowScanner) (*domain.PaymentIntent, error) {
	var p domain.PaymentIntent
	var metadata []byte
	err := row.Scan(
		&p.ID,
		&p.Subject,
		&p.BookingID,
		&p.GiftCardID,
		&p.SupplyOrderID,
		&p.Provider,
		&p.ProviderRef,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.LastError,
		&metadata,
		&p.ConfirmedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Metadata = map[string]interface{}{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMetadata, err)
		}
	}

	return &p, nil
}

// encodeMetadata сериализует metadata в строку JSON (jsonb принимает текст)
func encodeMetadata(metadata map[string]interface{}) (string, error) {
	if metadata == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
