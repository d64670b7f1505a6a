// Package config defines the typed configuration an embedding program
// assembles to wire up the engine. There is no CLI flag parsing here — flag
// definitions, env var cascades, and file loading are the embedder's
// responsibility; this package only validates and defaults the result,
// grounded on the teacher's cmd/gasoline-cmd/config loader pattern.
package config

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mFlorianW/rapid/internal/restclient"
	"github.com/mFlorianW/rapid/internal/track"
)

// Config holds every value the engine needs to start: where the database
// lives, which REST server to talk to, the track-detection radius, and the
// log level.
type Config struct {
	// DatabasePath is the SQLite file backing internal/storage. Required.
	DatabasePath string

	// ServerAddress/ServerPort are the REST server internal/restclient
	// targets. ServerAddress defaults to 127.0.0.1 and ServerPort to
	// restclient.DefaultServerAddr's port (27018), if left zero-valued.
	ServerAddress string
	ServerPort    uint16

	// TrackDetectionRadiusMeters is the radius internal/track.Detector uses.
	// 0 selects track.DefaultRadius.
	TrackDetectionRadiusMeters float64

	// LogLevel is parsed with logrus.ParseLevel; empty defaults to "info".
	LogLevel string
}

// Defaults returns a Config with every field at its engine default except
// DatabasePath, which has no sensible default and must be set by the
// caller.
func Defaults() Config {
	return Config{
		ServerAddress:              "127.0.0.1",
		ServerPort:                 27018,
		TrackDetectionRadiusMeters: track.DefaultRadius,
		LogLevel:                   "info",
	}
}

// WithDefaults returns a copy of c with zero-valued fields (other than
// DatabasePath) filled in from Defaults.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.ServerAddress == "" {
		c.ServerAddress = d.ServerAddress
	}
	if c.ServerPort == 0 {
		c.ServerPort = d.ServerPort
	}
	if c.TrackDetectionRadiusMeters == 0 {
		c.TrackDetectionRadiusMeters = d.TrackDetectionRadiusMeters
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	return c
}

// Validate checks that c's values are usable. Callers should call
// WithDefaults before Validate so unset-but-valid fields don't fail.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("config: DatabasePath is required")
	}
	if c.TrackDetectionRadiusMeters <= 0 {
		return fmt.Errorf("config: TrackDetectionRadiusMeters must be positive, got %v", c.TrackDetectionRadiusMeters)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: invalid LogLevel %q: %w", c.LogLevel, err)
	}
	return nil
}

// LogrusLevel parses LogLevel, falling back to logrus.InfoLevel if it is
// invalid (Validate should normally be called first to catch that case).
func (c Config) LogrusLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// DefaultServerAddr mirrors restclient.DefaultServerAddr for callers that
// want the engine's documented default without importing restclient
// directly.
const DefaultServerAddr = restclient.DefaultServerAddr
