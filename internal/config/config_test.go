package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 24, cfg.Booking.MinModificationNoticeHours)
	assert.Equal(t, 30, cfg.Booking.DefaultSlotDays)
	assert.Equal(t, "GHS", cfg.Booking.Currency)
	assert.Equal(t, 0, cfg.Booking.AwaitingPaymentTTLMinutes)
	assert.Equal(t, "booking.events", cfg.RabbitMQ.Exchange)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db"
port = 6432
user = "svc"
password = "secret"
dbname = "booking"

[booking]
currency = "ngn"
platform_markup_bps = 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "NGN", cfg.Booking.Currency)
	assert.Equal(t, 250, cfg.Booking.PlatformMarkupBps)
	assert.Equal(t, "host=db port=6432 user=svc password=secret dbname=booking sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[database]
password = "from-file"

[paystack]
secret_key = "from-file"
`)
	t.Setenv("BOOKING_DATABASE_PASSWORD", "from-env")
	t.Setenv("BOOKING_PAYSTACK_SECRET_KEY", "sk_env")
	t.Setenv("BOOKING_BOOKING_MIN_MODIFICATION_NOTICE_HOURS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "sk_env", cfg.Paystack.SecretKey)
	assert.Equal(t, 12, cfg.Booking.MinModificationNoticeHours)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
[rabbitmq]
enabled = true
url = ""
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
