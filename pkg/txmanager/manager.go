package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
)

// DefaultMaxRetries сколько раз повторять сериализуемую транзакцию при конфликте сериализации
const DefaultMaxRetries = 3

// pgSerializationFailure код ошибки Postgres 40001 (could not serialize access)
const pgSerializationFailure = "40001"

// pgDeadlockDetected код ошибки Postgres 40P01
const pgDeadlockDetected = "40P01"

var (
	// ErrBeginTx возвращается, если не удалось начать транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается, если не удалось зафиксировать транзакцию
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// Beginner источник транзакций (*dbmetrics.DB или адаптер над *sql.DB)
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// Manager менеджер транзакций: кладет транзакцию в контекст, репозитории достают её через dbmetrics.GetExecutor
type Manager struct {
	db         Beginner
	maxRetries int
}

// NewTransactionManager создает менеджер транзакций поверх БД с метриками
func NewTransactionManager(db *dbmetrics.DB) *Manager {
	return New(db)
}

// New создает менеджер поверх произвольного Beginner
func New(db Beginner) *Manager {
	return &Manager{db: db, maxRetries: DefaultMaxRetries}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию (READ COMMITTED)
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции
// При конфликте сериализации транзакция повторяется до maxRetries раз
func (m *Manager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		err = m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if err == nil || !IsSerializationFailure(err) {
			return err
		}
		// Внутри внешней транзакции повторять нельзя: откатится вся внешняя транзакция
		if dbmetrics.IsInTransaction(ctx) {
			return err
		}
	}
	return err
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *Manager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует уже открытую транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	guarded := &failureTracker{TxExecutor: tx}
	if err = fn(dbmetrics.WithTx(ctx, guarded)); err != nil {
		// Ошибку драйвера могли обернуть через %v по пути наверх, возвращаем её в цепочку
		if guarded.failure != nil && !IsSerializationFailure(err) {
			err = fmt.Errorf("%w: %w", err, guarded.failure)
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}
	return nil
}

// failureTracker запоминает первый конфликт сериализации, который вернул драйвер внутри транзакции
type failureTracker struct {
	dbmetrics.TxExecutor
	failure error
}

func (t *failureTracker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := t.TxExecutor.ExecContext(ctx, query, args...)
	t.track(err)
	return res, err
}

func (t *failureTracker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := t.TxExecutor.QueryContext(ctx, query, args...)
	t.track(err)
	return rows, err
}

func (t *failureTracker) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	row := t.TxExecutor.QueryRowContext(ctx, query, args...)
	if row != nil {
		t.track(row.Err())
	}
	return row
}

func (t *failureTracker) track(err error) {
	if t.failure == nil && err != nil && IsSerializationFailure(err) {
		t.failure = err
	}
}

// IsSerializationFailure проверяет, что ошибка вызвана конфликтом сериализации или deadlock
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected
	}
	return false
}
