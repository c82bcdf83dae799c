package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB подключение batch-процесса к БД
// Запросы трассируются X-Ray, если в контексте есть сегмент
type DB struct {
	*sqlx.DB
}

// Open открывает подключение через X-Ray SQL обертку
func Open(ctx context.Context, dsn string, maxOpenConns int) (*DB, error) {
	raw, err := xray.SQLContext("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: Open - create X-Ray SQL context: %w", ErrConnect, err)
	}

	conn := sqlx.NewDb(raw, "postgres")
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxOpenConns)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: Open - ping: %w", ErrConnect, err)
	}

	return &DB{conn}, nil
}
