// Package config loads server configuration from a file and environment
// variables via viper, the way the rest of this codebase's ambient stack
// is configured.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Signature SignatureConfig `mapstructure:"signature"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host                 string `mapstructure:"host"`
	Port                 int    `mapstructure:"port"`
	APIVersionAdvertised string `mapstructure:"api_version_advertised"`
}

// SessionConfig governs the Session Repository and Idempotency Guard TTLs.
type SessionConfig struct {
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

type SignatureConfig struct {
	ToleranceSec int `mapstructure:"tolerance_sec"`
}

type WebhookConfig struct {
	URL        string        `mapstructure:"url"`
	Secret     string        `mapstructure:"secret"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MerchantName string      `mapstructure:"merchant_name"`
}

// AuthConfig selects and parameterizes the pluggable AuthVerifier.
type AuthConfig struct {
	Mode        string `mapstructure:"mode"` // "none", "static", "jwt"
	BearerToken string `mapstructure:"bearer_token"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer"`
}

type RedisConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	DB               int    `mapstructure:"db"`
}

// DatabaseConfig backs the optional audit trail; the checkout engine
// itself never touches a database.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Enabled         bool          `mapstructure:"enabled"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Validate enforces the cross-field invariants the spec calls out: the
// idempotency TTL must never expire before the session TTL it was
// protecting, or a retried client could re-execute a completed payment.
func (c Config) Validate() error {
	if c.Session.IdempotencyTTL < c.Session.SessionTTL {
		return fmt.Errorf("idempotency_ttl (%s) must be >= session_ttl (%s)", c.Session.IdempotencyTTL, c.Session.SessionTTL)
	}
	if c.Auth.Mode != "none" && c.Auth.Mode != "static" && c.Auth.Mode != "jwt" {
		return fmt.Errorf("auth.mode must be one of none, static, jwt; got %q", c.Auth.Mode)
	}
	return nil
}

// Load reads configuration from file and environment variables, environment
// taking precedence. Prefix: ACP_. Nested keys use underscore, e.g.
// ACP_SESSION_SESSION_TTL, ACP_WEBHOOK_URL.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.api_version_advertised", "2024-01-01")
	v.SetDefault("session.session_ttl", "24h")
	v.SetDefault("session.idempotency_ttl", "24h")
	v.SetDefault("signature.tolerance_sec", 300)
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.timeout", "30s")
	v.SetDefault("webhook.merchant_name", "merchant")
	v.SetDefault("auth.mode", "none")
	v.SetDefault("auth.bearer_token", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")
	v.SetDefault("redis.connection_string", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "acp_audit")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ACP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
