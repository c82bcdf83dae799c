package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/txmanager"
)

// sqlBeginner адаптирует *sql.DB к txmanager.Beginner
type sqlBeginner struct {
	db *sql.DB
}

func (b sqlBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return b.db.BeginTx(ctx, opts)
}

// NewTransactionManager создает менеджер транзакций без метрик поверх *sql.DB
func NewTransactionManager(db *sql.DB) *txmanager.Manager {
	return txmanager.New(sqlBeginner{db: db})
}
