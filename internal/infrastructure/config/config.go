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
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	GSP       GSPConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
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
	// AutoMigrate applies the embedded migrations when the server starts
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds settings for validating inbound bearer tokens
type JWTConfig struct {
	Enabled bool
	Secret  string
	Issuer  string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit      float64
	RateLimitBurst int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	Profiling         ProfilingConfig
}

// ProfilingConfig holds Pyroscope continuous profiling settings
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string // cpu, alloc, inuse, goroutines, mutex, block
	// SpanProfiles links CPU profiles to trace spans; needs telemetry.enabled
	SpanProfiles      bool
}

// GSPConfig holds settings for the GST Suvidha Provider e-invoice API.
// Missing credentials do not fail Load; they are reported when an
// e-invoice operation is attempted.
type GSPConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	GSTIN        string

	AuthPath         string
	EnhancedAuthPath string
	GenerateIRNPath  string
	CancelIRNPath    string
	IRNByDocPath     string

	Timeout               time.Duration
	RetryOnTransportError bool
	RateLimitRPS          float64
	RateLimitBurst        int

	TokenValidity      time.Duration
	ForceRefreshWindow time.Duration
	CredentialStore    string // memory or redis
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with EINV_ prefix (e.g., EINV_GSP_CLIENT_SECRET)
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

	v.SetEnvPrefix("EINV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true cannot use the zero-value defaults below
	v.SetDefault("gsp.retry_on_transport_error", true)

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
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Enabled: v.GetBool("jwt.enabled"),
			Secret:  v.GetString("jwt.secret"),
			Issuer:  v.GetString("jwt.issuer"),
		},
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
			RateLimit:      v.GetFloat64("http.rate_limit"),
			RateLimitBurst: v.GetInt("http.rate_limit_burst"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			Profiling: ProfilingConfig{
				Enabled:           v.GetBool("telemetry.profiling.enabled"),
				ServerAddress:     v.GetString("telemetry.profiling.server_address"),
				BasicAuthUser:     v.GetString("telemetry.profiling.basic_auth_user"),
				BasicAuthPassword: v.GetString("telemetry.profiling.basic_auth_password"),
				ProfileTypes:      v.GetStringSlice("telemetry.profiling.profile_types"),
				SpanProfiles:      v.GetBool("telemetry.profiling.span_profiles"),
			},
		},
		GSP: GSPConfig{
			BaseURL:               v.GetString("gsp.base_url"),
			ClientID:              v.GetString("gsp.client_id"),
			ClientSecret:          v.GetString("gsp.client_secret"),
			Username:              v.GetString("gsp.username"),
			Password:              v.GetString("gsp.password"),
			GSTIN:                 v.GetString("gsp.gstin"),
			AuthPath:              v.GetString("gsp.auth_path"),
			EnhancedAuthPath:      v.GetString("gsp.enhanced_auth_path"),
			GenerateIRNPath:       v.GetString("gsp.generate_irn_path"),
			CancelIRNPath:         v.GetString("gsp.cancel_irn_path"),
			IRNByDocPath:          v.GetString("gsp.irn_by_doc_path"),
			Timeout:               v.GetDuration("gsp.timeout"),
			RetryOnTransportError: v.GetBool("gsp.retry_on_transport_error"),
			RateLimitRPS:          v.GetFloat64("gsp.rate_limit_rps"),
			RateLimitBurst:        v.GetInt("gsp.rate_limit_burst"),
			TokenValidity:         v.GetDuration("gsp.token_validity"),
			ForceRefreshWindow:    v.GetDuration("gsp.force_refresh_window"),
			CredentialStore:       v.GetString("gsp.credential_store"),
		},
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
		cfg.App.Name = "einvoice-gateway"
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
		cfg.Database.DBName = "einvoice"
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
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "einvoice-gateway"
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
	// Upstream IRN calls may take up to gsp.timeout, twice on retry
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateLimitBurst <= 0 {
		cfg.HTTP.RateLimitBurst = int(cfg.HTTP.RateLimit) + 1
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "einvoice-gateway"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.GSP.AuthPath == "" {
		cfg.GSP.AuthPath = "/gsp/authenticate"
	}
	if cfg.GSP.EnhancedAuthPath == "" {
		cfg.GSP.EnhancedAuthPath = "/eivital/v1.04/auth"
	}
	if cfg.GSP.GenerateIRNPath == "" {
		cfg.GSP.GenerateIRNPath = "/eicore/v1.03/Invoice"
	}
	if cfg.GSP.CancelIRNPath == "" {
		cfg.GSP.CancelIRNPath = "/eicore/v1.03/Invoice/Cancel"
	}
	if cfg.GSP.IRNByDocPath == "" {
		cfg.GSP.IRNByDocPath = "/eicore/v1.03/Invoice/irnbydocdetails"
	}
	if cfg.GSP.Timeout == 0 {
		cfg.GSP.Timeout = 30 * time.Second
	}
	if cfg.GSP.RateLimitRPS == 0 {
		cfg.GSP.RateLimitRPS = 10
	}
	if cfg.GSP.RateLimitBurst == 0 {
		cfg.GSP.RateLimitBurst = 5
	}
	if cfg.GSP.TokenValidity == 0 {
		cfg.GSP.TokenValidity = 360 * time.Minute
	}
	if cfg.GSP.ForceRefreshWindow == 0 {
		cfg.GSP.ForceRefreshWindow = 10 * time.Minute
	}
	if cfg.GSP.CredentialStore == "" {
		cfg.GSP.CredentialStore = "memory"
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

	if c.JWT.Enabled && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required when jwt.enabled is true")
	}

	if c.App.Env == "production" {
		if !c.JWT.Enabled {
			return fmt.Errorf("jwt.enabled must be true in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.GSP.BaseURL != "" && !strings.HasPrefix(c.GSP.BaseURL, "https://") {
			return fmt.Errorf("gsp.base_url must use https in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.Profiling.Enabled && c.Telemetry.Profiling.ServerAddress == "" {
		return fmt.Errorf("telemetry.profiling.server_address is required when profiling is enabled")
	}

	if c.GSP.CredentialStore != "memory" && c.GSP.CredentialStore != "redis" {
		return fmt.Errorf("gsp.credential_store must be 'memory' or 'redis', got %q", c.GSP.CredentialStore)
	}
	if c.GSP.ForceRefreshWindow >= c.GSP.TokenValidity {
		return fmt.Errorf("gsp.force_refresh_window (%s) must be shorter than gsp.token_validity (%s)",
			c.GSP.ForceRefreshWindow, c.GSP.TokenValidity)
	}
	if c.GSP.RateLimitRPS < 0 || c.GSP.RateLimitBurst < 0 {
		return fmt.Errorf("gsp.rate_limit_rps and gsp.rate_limit_burst cannot be negative")
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
