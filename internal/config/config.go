package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	pkgconfig "github.com/wekeepgrowing/vipgate/pkg/config"
)

const serviceName = "vipgate"

type Config struct {
	Service  ServiceConfig  `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Database DatabaseConfig `validate:"required"`
	Redis    RedisConfig
	Stripe   StripeConfig   `validate:"required"`
	Telegram TelegramConfig `validate:"required"`
	Dialog   DialogConfig
	Log      LogConfig
	Admin    AdminConfig
}

// LogConfig mirrors pkg/logger.Config.
type LogConfig struct {
	Level       string
	Format      string
	Output      string
	FilePath    string
	Development bool
}

// DialogConfig controls the transient registration dialog state.
type DialogConfig struct {
	// SessionTTL evicts a parked registration after this long without input. Zero disables eviction.
	SessionTTL time.Duration `validate:"gte=0"`
}

// AdminConfig protects the administrative HTTP API. An empty JWTSecret disables the API.
type AdminConfig struct {
	JWTSecret string
}

var defaults = map[string]interface{}{
	"service.name":                 serviceName,
	"service.environment":          "development",
	"server.http.host":             "0.0.0.0",
	"server.http.port":             5000,
	"server.http.shutdown_timeout": 10 * time.Second,
	"database.host":                "localhost",
	"database.port":                5432,
	"database.name":                "vipgate",
	"database.user":                "postgres",
	"database.ssl_mode":            "disable",
	"database.max_open_conns":      10,
	"database.max_idle_conns":      5,
	"database.conn_max_lifetime":   time.Hour,
	"database.conn_max_idle_time":  10 * time.Minute,
	"database.slow_threshold":      200 * time.Millisecond,
	"redis.lock_ttl":               30 * time.Second,
	"stripe.currency":              "usd",
	"stripe.api_url":               "https://api.stripe.com",
	"stripe.max_network_retries":   0,
	"telegram.api_url":             "https://api.telegram.org",
	"telegram.invite_link_prefix":  "https://t.me/",
	"telegram.updates_per_second":  20.0,
	"telegram.register_webhook":    true,
	"dialog.session_ttl":           30 * time.Minute,
	"log.level":                    "info",
	"log.format":                   "json",
	"log.output":                   "stdout",
}

// LoadConfig loads and validates the service configuration.
func LoadConfig() (*Config, error) {
	view, err := pkgconfig.Load(serviceName, defaults)
	if err != nil {
		return nil, err
	}

	cfg := fromView(view)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromView(v pkgconfig.Config) *Config {
	return &Config{
		Service: ServiceConfig{
			Name:          v.GetString("service.name"),
			Environment:   v.GetString("service.environment"),
			Version:       v.GetString("service.version"),
			PublicBaseURL: v.GetString("service.public_base_url"),
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{
				Host:            v.GetString("server.http.host"),
				Port:            v.GetInt("server.http.port"),
				ShutdownTimeout: v.GetDuration("server.http.shutdown_timeout"),
			},
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			Name:            v.GetString("database.name"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			LockTTL:  v.GetDuration("redis.lock_ttl"),
		},
		Stripe: StripeConfig{
			SecretKey:         v.GetString("stripe.secret_key"),
			WebhookSecret:     v.GetString("stripe.webhook_secret"),
			Currency:          v.GetString("stripe.currency"),
			APIURL:            v.GetString("stripe.api_url"),
			MaxNetworkRetries: v.GetInt64("stripe.max_network_retries"),
		},
		Telegram: TelegramConfig{
			Token:            v.GetString("telegram.token"),
			APIURL:           v.GetString("telegram.api_url"),
			AdminID:          v.GetInt64("telegram.admin_id"),
			WebhookSecret:    v.GetString("telegram.webhook_secret"),
			InviteLinkPrefix: v.GetString("telegram.invite_link_prefix"),
			UpdatesPerSecond: v.GetFloat64("telegram.updates_per_second"),
			RegisterWebhook:  v.GetBool("telegram.register_webhook"),
		},
		Dialog: DialogConfig{
			SessionTTL: v.GetDuration("dialog.session_ttl"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Format:      v.GetString("log.format"),
			Output:      v.GetString("log.output"),
			FilePath:    v.GetString("log.file_path"),
			Development: v.GetBool("log.development"),
		},
		Admin: AdminConfig{
			JWTSecret: v.GetString("admin.jwt_secret"),
		},
	}
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
