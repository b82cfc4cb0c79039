// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/memberguard/block-registry/internal/db"
)

// Backend names accepted by the block.*_store settings.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
	StoreNone     = "none"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	Block    BlockConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	Mode            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// PoolConfig converts the settings into a db.Config.
func (c DatabaseConfig) PoolConfig() *db.Config {
	return &db.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Name,
		SSLMode:         c.SSLMode,
		MaxConns:        int32(c.MaxConnections), //nolint:gosec // bounded by configuration
		MinConns:        int32(c.MinConnections), //nolint:gosec // bounded by configuration
		MaxConnLifetime: c.MaxLifetime,
		MaxConnIdleTime: c.MaxIdleTime,
	}
}

// RedisConfig contains the Redis connection URL.
type RedisConfig struct {
	URL string
}

// RabbitMQConfig contains RabbitMQ connection and exchange configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled             bool
	Host                string
	User                string
	Password            string
	Exchange            string
	Queue               string
	BlockedRoutingKey   string `mapstructure:"blocked_routing_key"`
	UnblockedRoutingKey string `mapstructure:"unblocked_routing_key"`
	Port                int
	ConfirmTimeout      time.Duration `mapstructure:"confirm_timeout"`
}

// URL renders the AMQP connection URL.
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// AuthConfig lists the API keys accepted by the HTTP API. Empty disables auth.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// BlockConfig contains registry behaviour and backend selection.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type BlockConfig struct {
	StateStore       string        `mapstructure:"state_store"`
	SessionStore     string        `mapstructure:"session_store"`
	CacheStore       string        `mapstructure:"cache_store"`
	KeyPrefix        string        `mapstructure:"key_prefix"`
	ListBuffer       time.Duration `mapstructure:"list_buffer"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	ProtectedUserIDs []int64       `mapstructure:"protected_user_ids"`
	NotificationKeys []string      `mapstructure:"notification_keys"`
	MaxLength        int           `mapstructure:"max_length"`
	StrictValidation bool          `mapstructure:"strict_validation"`
	Timezone         string        `mapstructure:"timezone"`
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (c BlockConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid block.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultNotificationKeys are the notification kinds withheld from blocked users.
var DefaultNotificationKeys = []string{
	"notification_activity_new_mention",
	"notification_activity_new_reply",
	"notification_friends_friendship_request",
	"notification_friends_friendship_accepted",
	"notification_groups_invite",
	"notification_groups_group_updated",
	"notification_groups_admin_promotion",
	"notification_groups_membership_request",
	"notification_messages_new_message",
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// APP_BLOCK_LIST_BUFFER overrides block.list_buffer
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects unknown backends and negative durations.
func (c *Config) Validate() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{"block.state_store", c.Block.StateStore, []string{StorePostgres, StoreRedis, StoreMemory}},
		{"block.cache_store", c.Block.CacheStore, []string{StoreRedis, StoreMemory}},
		{"block.session_store", c.Block.SessionStore, []string{StoreRedis, StoreMemory, StoreNone}},
	}
	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("invalid %s %q (expected one of %s)", check.key, check.value, strings.Join(check.allowed, ", "))
		}
	}

	if c.Block.ListBuffer < 0 {
		return fmt.Errorf("block.list_buffer must not be negative")
	}
	if c.Block.CacheTTL < 0 {
		return fmt.Errorf("block.cache_ttl must not be negative")
	}
	if c.Block.SessionTTL < 0 {
		return fmt.Errorf("block.session_ttl must not be negative")
	}
	if strings.TrimSpace(c.Block.KeyPrefix) == "" {
		return fmt.Errorf("block.key_prefix must not be empty")
	}
	if c.Block.MaxLength < 0 {
		return fmt.Errorf("block.max_length must not be negative")
	}
	if _, err := c.Block.Location(); err != nil {
		return err
	}

	return nil
}

// UsesRedis reports whether any configured backend needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Block.StateStore == StoreRedis ||
		c.Block.CacheStore == StoreRedis ||
		c.Block.SessionStore == StoreRedis
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "block_registry")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Redis
	viper.SetDefault("redis.url", "redis://localhost:6379/0")

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "member.blocks")
	viper.SetDefault("rabbitmq.queue", "member.blocks.audit")
	viper.SetDefault("rabbitmq.blocked_routing_key", "user.blocked")
	viper.SetDefault("rabbitmq.unblocked_routing_key", "user.unblocked")
	viper.SetDefault("rabbitmq.confirm_timeout", 5*time.Second)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")

	// Auth
	viper.SetDefault("auth.api_keys", []string{})

	// Block
	viper.SetDefault("block.state_store", StorePostgres)
	viper.SetDefault("block.session_store", StoreRedis)
	viper.SetDefault("block.cache_store", StoreRedis)
	viper.SetDefault("block.key_prefix", "bp_block_users")
	viper.SetDefault("block.list_buffer", time.Duration(0))
	viper.SetDefault("block.cache_ttl", time.Duration(0))
	viper.SetDefault("block.session_ttl", 14*24*time.Hour)
	viper.SetDefault("block.protected_user_ids", []int64{})
	viper.SetDefault("block.notification_keys", DefaultNotificationKeys)
	viper.SetDefault("block.max_length", 1000)
	viper.SetDefault("block.strict_validation", true)
	viper.SetDefault("block.timezone", "UTC")
}
