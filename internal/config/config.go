package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CORETASK_JWT_SECRET.
const EnvPrefix = "CORETASK"

// MinJWTSecretLength is the shortest accepted HMAC signing secret in bytes.
const MinJWTSecretLength = 32

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). postgres:// or sqlite file URLs.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Public base URL, used in invitation links
	ServerURL string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	JWT        JWTConfig
	Invitation InvitationConfig
	Cache      CacheConfig
	Log        LogConfig
	OTel       ObservabilityConfig
	CORS       CORSConfig
}

// JWTConfig configures token signing and verification.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	// Issuer is stamped into issued tokens and, when set, required on verify.
	Issuer string
}

// InvitationConfig configures invitation links.
type InvitationConfig struct {
	TTL time.Duration
}

// CacheConfig configures the tenant cache. An empty RedisURL keeps eviction
// local to the process.
type CacheConfig struct {
	Size     int
	RedisURL string
	Channel  string
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string
	Format string
}

// ObservabilityConfig configures OpenTelemetry export. Export is disabled when
// Endpoint is empty.
type ObservabilityConfig struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

func setDefaults() {
	viper.SetDefault("server_addr", "localhost:8080")
	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("max_db_connections", 25)
	viper.SetDefault("debug", false)
	viper.SetDefault("jwt.ttl", 24*time.Hour)
	viper.SetDefault("invitation.ttl", 7*24*time.Hour)
	viper.SetDefault("cache.size", 1024)
	viper.SetDefault("cache.channel", "coretask:cache:invalidate")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("otel.service_name", "coretask")
	viper.SetDefault("otel.environment", "development")
	viper.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads configuration from the global viper instance: a config file if
// one was read by the caller, then CORETASK_* environment variables, then
// defaults.
func Load() (*Config, error) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	// Nested keys are read with explicit Get calls; AutomaticEnv alone does
	// not populate them through Unmarshal.
	cfg := &Config{
		DatabaseURL:      viper.GetString("database_url"),
		ServerAddr:       viper.GetString("server_addr"),
		ServerURL:        viper.GetString("server_url"),
		MaxDBConnections: viper.GetInt("max_db_connections"),
		Debug:            viper.GetBool("debug"),
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
			TTL:    viper.GetDuration("jwt.ttl"),
			Issuer: viper.GetString("jwt.issuer"),
		},
		Invitation: InvitationConfig{
			TTL: viper.GetDuration("invitation.ttl"),
		},
		Cache: CacheConfig{
			Size:     viper.GetInt("cache.size"),
			RedisURL: viper.GetString("cache.redis_url"),
			Channel:  viper.GetString("cache.channel"),
		},
		Log: LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		OTel: ObservabilityConfig{
			Endpoint:       viper.GetString("otel.endpoint"),
			Insecure:       viper.GetBool("otel.insecure"),
			ServiceName:    viper.GetString("otel.service_name"),
			ServiceVersion: viper.GetString("otel.service_version"),
			Environment:    viper.GetString("otel.environment"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetStringSlice("cors.allowed_origins")),
		},
	}

	if cfg.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database_url is required"))
	}
	if c.ServerURL == "" {
		errs = append(errs, errors.New("server_url is required"))
	}
	if len(c.JWT.Secret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d bytes", MinJWTSecretLength))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt.ttl must be positive"))
	}
	if c.Invitation.TTL <= 0 {
		errs = append(errs, errors.New("invitation.ttl must be positive"))
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, errors.New("cache.size must be positive"))
	}
	if c.MaxDBConnections <= 0 {
		errs = append(errs, errors.New("max_db_connections must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// splitList accepts both YAML lists and a comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
