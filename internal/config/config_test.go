package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mFlorianW/rapid/internal/config"
)

func TestWithDefaultsFillsZeroFieldsOnly(t *testing.T) {
	t.Parallel()

	cfg := config.Config{DatabasePath: "/tmp/rapid.db", ServerPort: 9000}
	filled := cfg.WithDefaults()

	require.Equal(t, "/tmp/rapid.db", filled.DatabasePath)
	require.EqualValues(t, 9000, filled.ServerPort)
	require.Equal(t, config.Defaults().ServerAddress, filled.ServerAddress)
	require.Equal(t, config.Defaults().TrackDetectionRadiusMeters, filled.TrackDetectionRadiusMeters)
	require.Equal(t, "info", filled.LogLevel)
}

func TestValidateRequiresDatabasePath(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	err := cfg.Validate()
	require.Error(t, err)

	cfg.DatabasePath = "/tmp/rapid.db"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.DatabasePath = "/tmp/rapid.db"
	cfg.LogLevel = "not-a-level"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveRadius(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.DatabasePath = "/tmp/rapid.db"
	cfg.TrackDetectionRadiusMeters = -5
	require.Error(t, cfg.Validate())
}
