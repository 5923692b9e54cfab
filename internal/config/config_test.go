package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "tennis-tipster", cfg.App.Name)
	assert.Equal(t, 1500.0, cfg.Elo.Start)
	assert.Equal(t, 10, cfg.Features.FormWindow)
	assert.Equal(t, 0.05, cfg.Selection.EVThreshold)
	assert.Equal(t, "single", cfg.Model.Type)
	assert.Equal(t, 0.05, cfg.Fatigue.MinProb)
}

func TestLoadWithDefaultsOverrides(t *testing.T) {
	path := writeConfig(t, `
elo:
  k_base: 24.0
model:
  type: "ensemble"
  calibration: "isotonic"
`)

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 24.0, cfg.Elo.KBase)
	assert.Equal(t, "ensemble", cfg.Model.Type)
	assert.Equal(t, "isotonic", cfg.Model.Calibration)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1.1, cfg.Elo.SurfaceKBoost)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "hunter2")
	path := writeConfig(t, `
database:
  password: "${TEST_DB_PASSWORD}"
`)

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, _ := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.App.Environment = "qa"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development, staging, production")
}

func TestValidateFatigueBand(t *testing.T) {
	cfg, _ := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.Fatigue.MinProb = 0.9
	cfg.Fatigue.MaxProb = 0.1
	assert.Error(t, Validate(cfg))
}

func TestValidateEnsembleNeedsTrees(t *testing.T) {
	cfg, _ := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.Model.Type = "ensemble"
	cfg.Model.Trees = 0
	assert.Error(t, Validate(cfg))
}

func TestValidateDatabaseWhenEnabled(t *testing.T) {
	cfg, _ := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.Database.Enabled = true
	assert.Error(t, Validate(cfg), "missing host, name and user must fail")

	cfg.Database.Host = "localhost"
	cfg.Database.Name = "tipster"
	cfg.Database.User = "tipster"
	cfg.Database.MaxConnections = 10
	cfg.Database.MaxIdleConnections = 5
	cfg.Database.SSLMode = "disable"
	assert.NoError(t, Validate(cfg))

	// Production refuses plaintext connections.
	cfg.App.Environment = "production"
	assert.Error(t, Validate(cfg))
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, Name: "tips", User: "u", Password: "p", SSLMode: "require",
	}}
	assert.Equal(t, "postgres://u:p@db:5432/tips?sslmode=require", cfg.GetDatabaseDSN())
}

func TestIsDevelopmentIsProduction(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "development"}}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}
