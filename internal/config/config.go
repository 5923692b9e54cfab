// Package config provides configuration management for the tennis tipster.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Elo        EloConfig        `mapstructure:"elo" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features" validate:"required"`
	Fatigue    FatigueConfig    `mapstructure:"fatigue" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Selection  SelectionConfig  `mapstructure:"selection" validate:"required"`
	Datasource DatasourceConfig `mapstructure:"datasource"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents the optional Postgres connection used to
// persist tips and model records. When Enabled is false the pipeline
// writes CSV output only.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// EloConfig represents the rating replay parameters
type EloConfig struct {
	Start         float64 `mapstructure:"start" validate:"required,gt=0"`
	KBase         float64 `mapstructure:"k_base" validate:"required,gt=0"`
	SurfaceKBoost float64 `mapstructure:"surface_k_boost" validate:"required,gt=0"`
}

// FeaturesConfig represents feature construction parameters
type FeaturesConfig struct {
	FormWindow int     `mapstructure:"form_window" validate:"required,gt=0"`
	H2HDecay   float64 `mapstructure:"h2h_decay" validate:"required,gte=0,lte=1"`
}

// FatigueConfig holds the workload penalty weights. Window weights apply
// to match counts net of the next-shorter window.
type FatigueConfig struct {
	Weight7d   float64 `mapstructure:"w_7d" validate:"gte=0"`
	Weight14d  float64 `mapstructure:"w_14d" validate:"gte=0"`
	Weight30d  float64 `mapstructure:"w_30d" validate:"gte=0"`
	BackToBack float64 `mapstructure:"back_to_back" validate:"gte=0"`
	ShortRest  float64 `mapstructure:"short_rest" validate:"gte=0"`
	MinProb    float64 `mapstructure:"min_prob" validate:"gte=0,lt=1"`
	MaxProb    float64 `mapstructure:"max_prob" validate:"gt=0,lte=1"`
}

// ModelConfig represents model training configuration
type ModelConfig struct {
	Type            string  `mapstructure:"type" validate:"required,oneof=single ensemble"`
	Calibration     string  `mapstructure:"calibration" validate:"required,oneof=sigmoid isotonic"`
	NSplits         int     `mapstructure:"n_splits" validate:"required,gt=1"`
	EnsembleWeight  float64 `mapstructure:"ensemble_weight" validate:"gte=0,lte=1"`
	MaxIter         int     `mapstructure:"max_iter" validate:"required,gt=0"`
	L2              float64 `mapstructure:"l2" validate:"gte=0"`
	Trees           int     `mapstructure:"trees" validate:"omitempty,gt=0"`
	TreeDepth       int     `mapstructure:"tree_depth" validate:"omitempty,gt=0"`
	LearningRate    float64 `mapstructure:"learning_rate" validate:"omitempty,gt=0"`
	ArtifactPath    string  `mapstructure:"artifact_path" validate:"required"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
	CacheMaxSize    int     `mapstructure:"cache_max_size" validate:"omitempty,gt=0"`
}

// SelectionConfig represents the tip admission and staking rules
type SelectionConfig struct {
	EVThreshold   float64 `mapstructure:"ev_threshold"`
	KellyFraction float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	KellyCap      float64 `mapstructure:"kelly_cap" validate:"required,gt=0,lte=1"`
}

// DatasourceConfig represents remote CSV feed configuration
type DatasourceConfig struct {
	Sources     []SourceConfig `mapstructure:"sources"`
	DownloadDir string         `mapstructure:"download_dir"`
	RefreshCron string         `mapstructure:"refresh_cron"`
	RateLimit   float64        `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
	TimeoutSecs int            `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// SourceConfig represents a single remote CSV source
type SourceConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	URL     string `mapstructure:"url" validate:"omitempty,url"`
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
