package config

import (
	"fmt"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/storage"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Logging LoggingConfig
	Storage StorageConfig
	Engine  EngineConfig
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend storage.Backend
	Path    string
}

// EngineConfig tunes learning and combination.
type EngineConfig struct {
	Prune            PruneConfig
	CorrectionCap    int
	RetrainEvery     int
	RetrainWindow    int
	MaxConfidence    float64
	DescriptionModel bool
}

// PruneConfig controls which low-accuracy rules and patterns a retrain pass
// removes.
type PruneConfig struct {
	AccuracyFloor float64
	MinUsage      int
	Enabled       bool
}

// Default values.
const (
	DefaultCorrectionCap = 100
	DefaultRetrainEvery  = 10
	DefaultRetrainWindow = 50
	DefaultMaxConfidence = 0.95
	DefaultAccuracyFloor = 0.3
	DefaultMinUsage      = 10
	DefaultStoragePath   = "~/.local/share/saffron/saffron.db"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("storage.backend", string(storage.BackendSQLite))
	v.SetDefault("storage.path", DefaultStoragePath)
	v.SetDefault("engine.correction_cap", DefaultCorrectionCap)
	v.SetDefault("engine.retrain_every", DefaultRetrainEvery)
	v.SetDefault("engine.retrain_window", DefaultRetrainWindow)
	v.SetDefault("engine.max_confidence", DefaultMaxConfidence)
	v.SetDefault("engine.prune.accuracy_floor", DefaultAccuracyFloor)
	v.SetDefault("engine.prune.min_usage", DefaultMinUsage)
	v.SetDefault("engine.prune.enabled", true)
	v.SetDefault("engine.description_model", true)
}

// Default returns the configuration produced by the defaults alone.
func Default() *Config {
	cfg, err := Load(viper.New())
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

// Load resolves configuration from v, applying defaults first.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Storage: StorageConfig{
			Backend: storage.Backend(v.GetString("storage.backend")),
			Path:    ExpandPath(v.GetString("storage.path")),
		},
		Engine: EngineConfig{
			CorrectionCap:    v.GetInt("engine.correction_cap"),
			RetrainEvery:     v.GetInt("engine.retrain_every"),
			RetrainWindow:    v.GetInt("engine.retrain_window"),
			MaxConfidence:    v.GetFloat64("engine.max_confidence"),
			DescriptionModel: v.GetBool("engine.description_model"),
			Prune: PruneConfig{
				AccuracyFloor: v.GetFloat64("engine.prune.accuracy_floor"),
				MinUsage:      v.GetInt("engine.prune.min_usage"),
				Enabled:       v.GetBool("engine.prune.enabled"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format", "must be console or json, got %q", c.Logging.Format)
	}

	known := false
	for _, b := range storage.Backends() {
		if c.Storage.Backend == b {
			known = true
			break
		}
	}
	if !known {
		return invalid("storage.backend", "unknown backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != storage.BackendMemory && c.Storage.Path == "" {
		return invalid("storage.path", "required for the %s backend", c.Storage.Backend)
	}

	e := c.Engine
	if e.CorrectionCap < 1 {
		return invalid("engine.correction_cap", "must be at least 1, got %d", e.CorrectionCap)
	}
	if e.RetrainEvery < 0 {
		return invalid("engine.retrain_every", "must not be negative, got %d", e.RetrainEvery)
	}
	if e.RetrainWindow < 1 {
		return invalid("engine.retrain_window", "must be at least 1, got %d", e.RetrainWindow)
	}
	if e.MaxConfidence <= 0 || e.MaxConfidence > 1 {
		return invalid("engine.max_confidence", "must be in (0, 1], got %v", e.MaxConfidence)
	}
	if e.Prune.AccuracyFloor < 0 || e.Prune.AccuracyFloor > 1 {
		return invalid("engine.prune.accuracy_floor", "must be in [0, 1], got %v", e.Prune.AccuracyFloor)
	}
	if e.Prune.MinUsage < 0 {
		return invalid("engine.prune.min_usage", "must not be negative, got %d", e.Prune.MinUsage)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", common.ErrInvalidConfig, key, fmt.Sprintf(format, args...))
}
