package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Vault        VaultConfig
	Gateway      GatewayConfig
	Sync         SyncConfig
	Marketplaces map[string]MarketplaceConfig
	Log          LogConfig
	HTTP         HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// VaultConfig holds credential encryption settings
type VaultConfig struct {
	// EncryptionKey is either 64 hex characters (used directly) or a
	// passphrase stretched with PBKDF2
	EncryptionKey string
}

// GatewayConfig holds adapter pool settings
type GatewayConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// SyncConfig holds batch engine settings
type SyncConfig struct {
	ChunkSize   int
	Concurrency int
	ChunkPause  time.Duration
}

// MarketplaceConfig holds per-marketplace settings: rate budget, endpoint
// overrides and the operator-wide fallback credentials
type MarketplaceConfig struct {
	BaseURL     string
	TokenURL    string
	MaxRequests int
	Window      time.Duration

	// Operator default credentials, used when a tenant has no record
	APIKey     string
	APISecret  string
	Identifier string

	// Amazon-specific auxiliary fields
	Region       string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// marketplaceKeys are the config sections read under [marketplaces.*]
var marketplaceKeys = []string{"trendyol", "amazon", "shopify", "n11"}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ENTEGRA_ prefix (e.g., ENTEGRA_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ENTEGRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Vault: VaultConfig{
			EncryptionKey: v.GetString("vault.encryption_key"),
		},
		Gateway: GatewayConfig{
			IdleTTL:       v.GetDuration("gateway.idle_ttl"),
			SweepInterval: v.GetDuration("gateway.sweep_interval"),
		},
		Sync: SyncConfig{
			ChunkSize:   v.GetInt("sync.chunk_size"),
			Concurrency: v.GetInt("sync.concurrency"),
			ChunkPause:  v.GetDuration("sync.chunk_pause"),
		},
		Marketplaces: make(map[string]MarketplaceConfig, len(marketplaceKeys)),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
	}

	for _, key := range marketplaceKeys {
		prefix := "marketplaces." + key + "."
		cfg.Marketplaces[key] = MarketplaceConfig{
			BaseURL:      v.GetString(prefix + "base_url"),
			TokenURL:     v.GetString(prefix + "token_url"),
			MaxRequests:  v.GetInt(prefix + "max_requests"),
			Window:       v.GetDuration(prefix + "window"),
			APIKey:       v.GetString(prefix + "api_key"),
			APISecret:    v.GetString(prefix + "api_secret"),
			Identifier:   v.GetString(prefix + "identifier"),
			Region:       v.GetString(prefix + "region"),
			RefreshToken: v.GetString(prefix + "refresh_token"),
			ClientID:     v.GetString(prefix + "client_id"),
			ClientSecret: v.GetString(prefix + "client_secret"),
		}
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "entegra-gateway"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "entegra"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Gateway.IdleTTL == 0 {
		cfg.Gateway.IdleTTL = time.Hour
	}
	if cfg.Gateway.SweepInterval == 0 {
		cfg.Gateway.SweepInterval = 10 * time.Minute
	}
	if cfg.Sync.ChunkSize == 0 {
		cfg.Sync.ChunkSize = 50
	}
	if cfg.Sync.Concurrency == 0 {
		cfg.Sync.Concurrency = 5
	}
	if cfg.Sync.ChunkPause == 0 {
		cfg.Sync.ChunkPause = time.Second
	}
	for key, mp := range cfg.Marketplaces {
		if mp.MaxRequests == 0 {
			mp.MaxRequests = 10
		}
		if mp.Window == 0 {
			mp.Window = time.Second
		}
		cfg.Marketplaces[key] = mp
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Vault.EncryptionKey == "" {
			return fmt.Errorf("vault.encryption_key is required in production")
		}
		if len(c.Vault.EncryptionKey) < 32 {
			return fmt.Errorf("vault.encryption_key must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
