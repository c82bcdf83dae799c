package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

var bookingColumns = []string{
	"id",
	"reference",
	"vendor_id",
	"service_id",
	"customer_user_id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"scheduled_start",
	"scheduled_end",
	"seat_id",
	"staff_id",
	"price",
	"deposit",
	"balance",
	"gift_card_applied",
	"balance_settled",
	"currency",
	"status",
	"source",
	"notes",
	"reschedule_count",
	"cancelled_by",
	"cancellation_reason",
	"rescheduled_at",
	"cancelled_at",
	"completed_at",
	"paid_at",
	"reminder_sent_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Вызывается в той же транзакции, что и проверка пересечений (allocator),
// иначе два параллельных запроса могут занять один слот.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"reference",
			"vendor_id",
			"service_id",
			"customer_user_id",
			"customer_name",
			"customer_email",
			"customer_phone",
			"scheduled_start",
			"scheduled_end",
			"seat_id",
			"staff_id",
			"price",
			"deposit",
			"balance",
			"gift_card_applied",
			"balance_settled",
			"currency",
			"status",
			"source",
			"notes",
			"created_at",
			"updated_at",
		).
		Values(
			booking.Reference,
			booking.VendorID,
			booking.ServiceID,
			booking.CustomerUserID,
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.ScheduledStart,
			booking.ScheduledEnd,
			booking.SeatID,
			booking.StaffID,
			booking.Price,
			booking.Deposit,
			booking.Balance,
			booking.GiftCardApplied,
			booking.BalanceSettled,
			booking.Currency,
			booking.Status,
			booking.Source,
			booking.Notes,
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateReference
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListActiveOverlapping возвращает активные бронирования вендора, пересекающие [Start, End)
// Граничащие бронирования (end = start) не пересекаются.
// Внутри транзакции найденные строки блокируются (FOR UPDATE).
func (r *Repository) ListActiveOverlapping(ctx context.Context, q domain.OverlapQuery) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"vendor_id": q.VendorID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Where(squirrel.Lt{"scheduled_start": q.End}).
		Where(squirrel.Gt{"scheduled_end": q.Start}).
		OrderBy("scheduled_start ASC", "id ASC")

	if q.ExcludeBookingID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *q.ExcludeBookingID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveOverlapping - build select query: %w", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, "ListActiveOverlapping", query, args)
}

// Update сохраняет изменяемые поля бронирования
// Reference, вендор, услуга и цена после создания не меняются.
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("customer_user_id", booking.CustomerUserID).
		Set("scheduled_start", booking.ScheduledStart).
		Set("scheduled_end", booking.ScheduledEnd).
		Set("seat_id", booking.SeatID).
		Set("staff_id", booking.StaffID).
		Set("deposit", booking.Deposit).
		Set("balance", booking.Balance).
		Set("gift_card_applied", booking.GiftCardApplied).
		Set("balance_settled", booking.BalanceSettled).
		Set("status", booking.Status).
		Set("reschedule_count", booking.RescheduleCount).
		Set("cancelled_by", booking.CancelledBy).
		Set("cancellation_reason", booking.CancellationReason).
		Set("rescheduled_at", booking.RescheduledAt).
		Set("cancelled_at", booking.CancelledAt).
		Set("completed_at", booking.CompletedAt).
		Set("paid_at", booking.PaidAt).
		Set("reminder_sent_at", booking.ReminderSentAt).
		Set("updated_at", booking.UpdatedAt).
		Where(squirrel.Eq{"id": booking.ID}).
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
		return ErrBookingNotFound
	}

	return nil
}

// ListByVendor получает бронирования вендора с фильтрацией и пагинацией
// Сортировка: по началу, сначала новые
func (r *Repository) ListByVendor(ctx context.Context, filter domain.VendorBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"vendor_id": filter.VendorID})

	if len(filter.Statuses) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_start": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"scheduled_start": *filter.To})
	}

	selectBuilder = selectBuilder.OrderBy("scheduled_start DESC", "id DESC")
	if filter.Take > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Take))
	}
	if filter.Skip > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Skip))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByVendor - build select query: %w", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, "ListByVendor", query, args)
}

// ListUpcomingByVendor получает ближайшие активные бронирования вендора
func (r *Repository) ListUpcomingByVendor(ctx context.Context, vendorID int64, now time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"vendor_id": vendorID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Where(squirrel.GtOrEq{"scheduled_start": now}).
		OrderBy("scheduled_start ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListUpcomingByVendor - build select query: %w", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, "ListUpcomingByVendor", query, args)
}

// ListByCustomer получает бронирования клиента
// upcoming=true: активные, начинающиеся не раньше now, ближайшие первыми.
// upcoming=false: история (все остальные), сначала новые.
func (r *Repository) ListByCustomer(ctx context.Context, userID int64, upcoming bool, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_user_id": userID})

	if upcoming {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
			Where(squirrel.GtOrEq{"scheduled_start": now}).
			OrderBy("scheduled_start ASC", "id ASC")
	} else {
		selectBuilder = selectBuilder.
			Where(squirrel.Or{
				squirrel.Eq{"status": statusStrings(domain.InactiveStatuses)},
				squirrel.Lt{"scheduled_start": now},
			}).
			OrderBy("scheduled_start DESC", "id DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - build select query: %w", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, "ListByCustomer", query, args)
}

// ListClaimable получает бронирования без клиента, чей email или телефон совпадает с профилем
func (r *Repository) ListClaimable(ctx context.Context, email, phone *string, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	match := squirrel.Or{}
	if email != nil && *email != "" {
		match = append(match, squirrel.Eq{"customer_email": *email})
	}
	if phone != nil && *phone != "" {
		match = append(match, squirrel.Eq{"customer_phone": *phone})
	}
	if len(match) == 0 {
		return []*domain.Booking{}, nil
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_user_id": nil}).
		Where(match).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListClaimable - build select query: %w", ErrBuildQuery, err)
	}

	return r.queryBookings(ctx, executor, "ListClaimable", query, args)
}

// GetVendorStats считает бронирования вендора по статусам и сумму завершенных продаж
func (r *Repository) GetVendorStats(ctx context.Context, vendorID int64) (*domain.VendorStats, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("status", "COUNT(*)", "COALESCE(SUM(price), 0)").
		From("bookings").
		Where(squirrel.Eq{"vendor_id": vendorID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetVendorStats - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetVendorStats - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	stats := &domain.VendorStats{
		VendorID:       vendorID,
		CountsByStatus: make(map[domain.BookingStatus]int),
	}
	for rows.Next() {
		var status domain.BookingStatus
		var count int
		var sum int64
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, fmt.Errorf("%w: GetVendorStats - scan row: %w", ErrScanRow, err)
		}
		stats.CountsByStatus[status] = count
		stats.Total += count
		if status == domain.StatusCompleted {
			stats.CompletedSales = sum
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetVendorStats - rows error: %w", ErrScanRow, err)
	}

	return stats, nil
}

func (r *Repository) queryBookings(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Booking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует строку в порядке bookingColumns
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.VendorID,
		&b.ServiceID,
		&b.CustomerUserID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.ScheduledStart,
		&b.ScheduledEnd,
		&b.SeatID,
		&b.StaffID,
		&b.Price,
		&b.Deposit,
		&b.Balance,
		&b.GiftCardApplied,
		&b.BalanceSettled,
		&b.Currency,
		&b.Status,
		&b.Source,
		&b.Notes,
		&b.RescheduleCount,
		&b.CancelledBy,
		&b.CancellationReason,
		&b.RescheduledAt,
		&b.CancelledAt,
		&b.CompletedAt,
		&b.PaidAt,
		&b.ReminderSentAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ScheduledStart = b.ScheduledStart.UTC()
	b.ScheduledEnd = b.ScheduledEnd.UTC()
	return &b, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
