// Package config provides configuration management for the tennis tipster.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TENNIS_TIPSTER"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. Missing config files are tolerated; defaults and environment
// variables alone can produce a usable development configuration.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tennis-tipster")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("elo.start", 1500.0)
	v.SetDefault("elo.k_base", 32.0)
	v.SetDefault("elo.surface_k_boost", 1.1)

	v.SetDefault("features.form_window", 10)
	v.SetDefault("features.h2h_decay", 0.9)

	v.SetDefault("fatigue.w_7d", 0.015)
	v.SetDefault("fatigue.w_14d", 0.010)
	v.SetDefault("fatigue.w_30d", 0.005)
	v.SetDefault("fatigue.back_to_back", 0.030)
	v.SetDefault("fatigue.short_rest", 0.015)
	v.SetDefault("fatigue.min_prob", 0.05)
	v.SetDefault("fatigue.max_prob", 0.95)

	v.SetDefault("model.type", "single")
	v.SetDefault("model.calibration", "sigmoid")
	v.SetDefault("model.n_splits", 5)
	v.SetDefault("model.ensemble_weight", 0.5)
	v.SetDefault("model.max_iter", 200)
	v.SetDefault("model.l2", 1.0)
	v.SetDefault("model.trees", 100)
	v.SetDefault("model.tree_depth", 3)
	v.SetDefault("model.learning_rate", 0.1)
	v.SetDefault("model.artifact_path", "models/model.json")
	v.SetDefault("model.cache_ttl_seconds", 300)
	v.SetDefault("model.cache_max_size", 10000)

	v.SetDefault("selection.ev_threshold", 0.05)
	v.SetDefault("selection.kelly_fraction", 0.25)
	v.SetDefault("selection.kelly_cap", 0.05)

	v.SetDefault("datasource.rate_limit", 5.0)
	v.SetDefault("datasource.timeout_seconds", 30)
	v.SetDefault("datasource.download_dir", "data/raw")
	v.SetDefault("datasource.refresh_cron", "0 6 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
