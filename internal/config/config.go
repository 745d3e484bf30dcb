package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/JonnyWalker81/cadence/backend/internal/prediction"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Env            string   `mapstructure:"env"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// PredictionConfig tunes the session-time model
type PredictionConfig struct {
	DecayFactor             float64       `mapstructure:"decay_factor"`
	SmoothingWeight         float64       `mapstructure:"smoothing_weight"`
	MinEventsForPrediction  int           `mapstructure:"min_events_for_prediction"`
	MinEventsForInsights    int           `mapstructure:"min_events_for_insights"`
	ConfidenceSensitivity   float64       `mapstructure:"confidence_sensitivity"`
	WeekendRatio            float64       `mapstructure:"weekend_ratio"`
	RegularityCellThreshold float64       `mapstructure:"regularity_cell_threshold"`
	RegularityMaxCells      int           `mapstructure:"regularity_max_cells"`
	Timezone                string        `mapstructure:"timezone"` // IANA name; empty means server local time
	LookbackDays            int           `mapstructure:"lookback_days"`
	CacheTTL                time.Duration `mapstructure:"cache_ttl"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"per_minute"`
	Burst     int  `mapstructure:"burst"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from a .env file, environment variables and an
// optional config.yaml, and validates the result
func Load() (*Config, error) {
	cfg, err := LoadWithoutValidation()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithoutValidation is Load for commands that never reach Supabase
func LoadWithoutValidation() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CADENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables for platform compatibility
	_ = v.BindEnv("server.port", "CADENCE_SERVER_PORT", "PORT")
	_ = v.BindEnv("supabase.url", "CADENCE_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "CADENCE_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	defaults := prediction.DefaultConfig()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)

	v.SetDefault("prediction.decay_factor", defaults.DecayFactor)
	v.SetDefault("prediction.smoothing_weight", defaults.SmoothingWeight)
	v.SetDefault("prediction.min_events_for_prediction", defaults.MinEventsForPrediction)
	v.SetDefault("prediction.min_events_for_insights", defaults.MinEventsForInsights)
	v.SetDefault("prediction.confidence_sensitivity", defaults.ConfidenceSensitivity)
	v.SetDefault("prediction.weekend_ratio", defaults.WeekendRatio)
	v.SetDefault("prediction.regularity_cell_threshold", defaults.RegularityCellThreshold)
	v.SetDefault("prediction.regularity_max_cells", defaults.RegularityMaxCells)
	v.SetDefault("prediction.timezone", "")
	v.SetDefault("prediction.lookback_days", 365)
	v.SetDefault("prediction.cache_ttl", prediction.DefaultCacheTTL)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.per_minute", 120)
	v.SetDefault("ratelimit.burst", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// comma-separated lists arrive from the environment as one string
	if len(config.Server.AllowedOrigins) == 1 && strings.Contains(config.Server.AllowedOrigins[0], ",") {
		config.Server.AllowedOrigins = strings.Split(config.Server.AllowedOrigins[0], ",")
	}

	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if _, err := c.Prediction.EngineConfig(); err != nil {
		return err
	}
	if c.RateLimit.Enabled && c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("ratelimit.per_minute must be positive when rate limiting is enabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	return nil
}

// EngineConfig converts the tuning section into a validated engine config
func (p PredictionConfig) EngineConfig() (prediction.Config, error) {
	loc := time.Local
	if p.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(p.Timezone)
		if err != nil {
			return prediction.Config{}, fmt.Errorf("invalid prediction.timezone %q: %w", p.Timezone, err)
		}
	}

	cfg := prediction.Config{
		DecayFactor:             p.DecayFactor,
		SmoothingWeight:         p.SmoothingWeight,
		MinEventsForPrediction:  p.MinEventsForPrediction,
		MinEventsForInsights:    p.MinEventsForInsights,
		ConfidenceSensitivity:   p.ConfidenceSensitivity,
		WeekendRatio:            p.WeekendRatio,
		RegularityCellThreshold: p.RegularityCellThreshold,
		RegularityMaxCells:      p.RegularityMaxCells,
		Location:                loc,
	}
	if err := cfg.Validate(); err != nil {
		return prediction.Config{}, err
	}
	return cfg, nil
}

// LoggerConfig converts the logging section for the logger package
func (l LoggingConfig) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(l.Level)
	if l.Format != "" {
		cfg.Format = l.Format
	}
	cfg.AddSource = l.AddSource
	return cfg
}
