package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// ErrInvalidConfig конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса (config.toml)
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Redis      RedisConfig      `toml:"redis"`
	RabbitMQ   RabbitMQConfig   `toml:"rabbitmq"`
	Payment    PaymentConfig    `toml:"payment"`
	Auth       AuthConfig       `toml:"auth"`
	Scheduling SchedulingConfig `toml:"scheduling"`
	Flow       FlowConfig       `toml:"flow"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig пустой URL отключает публикацию событий
type RabbitMQConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

type PaymentConfig struct {
	Provider  string `toml:"provider"` // stripe | sandbox
	StripeKey string `toml:"stripe_key"`
	Currency  string `toml:"currency"`
	Timeout   int    `toml:"timeout"` // секунды
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
}

type SchedulingConfig struct {
	WorkStartHour     int `toml:"work_start_hour"`
	WorkEndHour       int `toml:"work_end_hour"`
	SlotLengthMinutes int `toml:"slot_length_minutes"`
}

// WorkingHours окно генерации слотов
func (s SchedulingConfig) WorkingHours() domain.WorkingHours {
	return domain.WorkingHours{
		StartHour:  s.WorkStartHour,
		EndHour:    s.WorkEndHour,
		SlotLength: time.Duration(s.SlotLengthMinutes) * time.Minute,
	}
}

type FlowConfig struct {
	SessionTTLMinutes int `toml:"session_ttl_minutes"`
	LockTTLSeconds    int `toml:"lock_ttl_seconds"`
}

func (f FlowConfig) SessionTTL() time.Duration {
	return time.Duration(f.SessionTTLMinutes) * time.Minute
}

func (f FlowConfig) LockTTL() time.Duration {
	return time.Duration(f.LockTTLSeconds) * time.Second
}

// Load читает конфигурацию из TOML файла, подставляет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 10)
	setDefault(&c.Server.WriteTimeout, 10)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "smc_marketplace_booking"
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "marketplace.bookings"
	}

	if c.Payment.Provider == "" {
		c.Payment.Provider = "sandbox"
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "usd"
	}
	setDefault(&c.Payment.Timeout, 15)

	setDefault(&c.Scheduling.WorkStartHour, domain.DefaultWorkStartHour)
	setDefault(&c.Scheduling.WorkEndHour, domain.DefaultWorkEndHour)
	setDefault(&c.Scheduling.SlotLengthMinutes, domain.DefaultSlotLengthMinutes)

	setDefault(&c.Flow.SessionTTLMinutes, 30)
	setDefault(&c.Flow.LockTTLSeconds, 30)
}

// Validate отклоняет невозможные значения.
// work_start_hour >= work_end_hour допустимо: день просто без слотов.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Scheduling.SlotLengthMinutes <= 0 {
		problems = append(problems, "scheduling.slot_length_minutes must be positive")
	}
	if c.Scheduling.WorkStartHour < 0 || c.Scheduling.WorkStartHour > 24 ||
		c.Scheduling.WorkEndHour < 0 || c.Scheduling.WorkEndHour > 24 {
		problems = append(problems, "scheduling hours must be in 0..24")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required")
	}
	if c.Payment.Provider != "sandbox" && c.Payment.Provider != "stripe" {
		problems = append(problems, fmt.Sprintf("payment.provider %q is not supported", c.Payment.Provider))
	}
	if c.Payment.Provider == "stripe" && c.Payment.StripeKey == "" {
		problems = append(problems, "payment.stripe_key is required for provider stripe")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, problems)
	}
	return nil
}

// setDefault заполняет нулевое значение. Ноль в конфиге для этих полей не имеет смысла.
func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
