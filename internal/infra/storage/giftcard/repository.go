package giftcard

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

// Repository репозиторий подарочных карт и их списаний
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория подарочных карт
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode получает карту по нормализованному коду
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	return r.getOne(ctx, "GetByCode", squirrel.Eq{"code": code})
}

// GetByID получает карту по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.GiftCard, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.GiftCard, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"vendor_id",
		"code",
		"currency",
		"balance",
		"status",
		"expires_at",
		"updated_at",
	).
		From("gift_cards").
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	var card domain.GiftCard
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&card.ID,
		&card.VendorID,
		&card.Code,
		&card.Currency,
		&card.Balance,
		&card.Status,
		&card.ExpiresAt,
		&card.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGiftCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan gift card: %w", ErrScanRow, op, err)
	}

	return &card, nil
}

// Update сохраняет баланс и статус карты
func (r *Repository) Update(ctx context.Context, card *domain.GiftCard) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("gift_cards").
		Set("balance", card.Balance).
		Set("status", card.Status).
		Set("updated_at", card.UpdatedAt).
		Where(squirrel.Eq{"id": card.ID}).
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
		return ErrGiftCardNotFound
	}

	return nil
}

// CreateRedemption записывает списание с карты в пользу бронирования
func (r *Repository) CreateRedemption(ctx context.Context, redemption *domain.GiftCardRedemption) (*domain.GiftCardRedemption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("gift_card_redemptions").
		Columns("gift_card_id", "booking_id", "amount", "created_at").
		Values(redemption.GiftCardID, redemption.BookingID, redemption.Amount, redemption.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateRedemption - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&redemption.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateRedemption - execute insert: %w", ErrExecQuery, err)
	}

	return redemption, nil
}

// ListUnrefundedRedemptions возвращает невозвращенные списания бронирования
func (r *Repository) ListUnrefundedRedemptions(ctx context.Context, bookingID int64) ([]*domain.GiftCardRedemption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "gift_card_id", "booking_id", "amount", "refunded_at", "created_at").
		From("gift_card_redemptions").
		Where(squirrel.Eq{"booking_id": bookingID, "refunded_at": nil}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnrefundedRedemptions - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnrefundedRedemptions - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	redemptions := make([]*domain.GiftCardRedemption, 0)
	for rows.Next() {
		var rd domain.GiftCardRedemption
		if err := rows.Scan(&rd.ID, &rd.GiftCardID, &rd.BookingID, &rd.Amount, &rd.RefundedAt, &rd.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListUnrefundedRedemptions - scan redemption: %w", ErrScanRow, err)
		}
		redemptions = append(redemptions, &rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListUnrefundedRedemptions - rows error: %w", ErrScanRow, err)
	}

	return redemptions, nil
}

// MarkRedemptionRefunded отмечает списание возвращенным
func (r *Repository) MarkRedemptionRefunded(ctx context.Context, id int64, refundedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("gift_card_redemptions").
		Set("refunded_at", refundedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkRedemptionRefunded - build update query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkRedemptionRefunded - execute update: %w", ErrExecQuery, err)
	}

	return nil
}
