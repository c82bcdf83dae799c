package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, переопределяющих config.toml
// Пример: BOOKING_DATABASE_PASSWORD, BOOKING_PAYSTACK_SECRET_KEY
const EnvPrefix = "BOOKING"

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Logs     LogsConfig     `toml:"logs"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Tracing  TracingConfig  `toml:"tracing"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Paystack PaystackConfig `toml:"paystack"`
	Booking  BookingConfig  `toml:"booking"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int      `toml:"http_port" split_words:"true"`
	ReadTimeout     int      `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int      `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int      `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int      `toml:"shutdown_timeout" split_words:"true"`
	AllowedOrigins  []string `toml:"allowed_origins" split_words:"true"`
}

// DatabaseConfig настройки подключения к Postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"` // секунды
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name" split_words:"true"`
	Path        string `toml:"path"`
}

// TracingConfig настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	Environment string `toml:"environment"`
}

// RabbitMQConfig настройки публикации доменных событий
type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// PaystackConfig настройки платежного провайдера
type PaystackConfig struct {
	BaseURL     string `toml:"base_url" split_words:"true"`
	SecretKey   string `toml:"secret_key" split_words:"true"`
	PublicKey   string `toml:"public_key" split_words:"true"`
	CallbackURL string `toml:"callback_url" split_words:"true"`
	Timeout     int    `toml:"timeout"` // секунды

	// InitializeCheckout создавать checkout-сессию на стороне Paystack при онлайн-бронировании
	InitializeCheckout bool `toml:"initialize_checkout" split_words:"true"`
}

// BookingConfig бизнес-настройки бронирований
type BookingConfig struct {
	MinModificationNoticeHours int    `toml:"min_modification_notice_hours" split_words:"true"`
	DefaultSlotDays            int    `toml:"default_slot_days" split_words:"true"`
	MaxSlotDays                int    `toml:"max_slot_days" split_words:"true"`
	PlatformMarkupBps          int    `toml:"platform_markup_bps" split_words:"true"`
	Currency                   string `toml:"currency"`
	AwaitingPaymentTTLMinutes  int    `toml:"awaiting_payment_ttl_minutes" envconfig:"AWAITING_PAYMENT_TTL_MINUTES"`
	ReminderLeadHours          int    `toml:"reminder_lead_hours" split_words:"true"`
	OutboxBatchSize            int    `toml:"outbox_batch_size" split_words:"true"`
}

// Load читает конфигурацию из TOML файла и применяет переопределения из окружения
// Отсутствующий файл не является ошибкой: используются значения по умолчанию и окружение
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to stat %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to apply environment overrides: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 25
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "marketplace_booking"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4317"
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = "dev"
	}

	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "booking.events"
	}

	if c.Paystack.BaseURL == "" {
		c.Paystack.BaseURL = "https://api.paystack.co"
	}
	if c.Paystack.Timeout == 0 {
		c.Paystack.Timeout = 10
	}

	if c.Booking.MinModificationNoticeHours == 0 {
		c.Booking.MinModificationNoticeHours = 24
	}
	if c.Booking.DefaultSlotDays == 0 {
		c.Booking.DefaultSlotDays = 30
	}
	if c.Booking.MaxSlotDays == 0 {
		c.Booking.MaxSlotDays = 90
	}
	if c.Booking.Currency == "" {
		c.Booking.Currency = "GHS"
	}
	c.Booking.Currency = strings.ToUpper(c.Booking.Currency)
	if c.Booking.ReminderLeadHours == 0 {
		c.Booking.ReminderLeadHours = 24
	}
	if c.Booking.OutboxBatchSize == 0 {
		c.Booking.OutboxBatchSize = 100
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}
	if c.Booking.MinModificationNoticeHours < 0 {
		return fmt.Errorf("%w: booking.min_modification_notice_hours must not be negative", ErrInvalidConfig)
	}
	if c.Booking.DefaultSlotDays < 1 || c.Booking.DefaultSlotDays > c.Booking.MaxSlotDays {
		return fmt.Errorf("%w: booking.default_slot_days must be in 1..max_slot_days", ErrInvalidConfig)
	}
	if c.Booking.PlatformMarkupBps < 0 {
		return fmt.Errorf("%w: booking.platform_markup_bps must not be negative", ErrInvalidConfig)
	}
	if len(c.Booking.Currency) != 3 {
		return fmt.Errorf("%w: booking.currency must be an ISO 4217 code", ErrInvalidConfig)
	}
	if c.Booking.AwaitingPaymentTTLMinutes < 0 {
		return fmt.Errorf("%w: booking.awaiting_payment_ttl_minutes must not be negative", ErrInvalidConfig)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: rabbitmq.url is required when rabbitmq is enabled", ErrInvalidConfig)
	}
	return nil
}
