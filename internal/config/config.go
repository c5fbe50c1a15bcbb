package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Search     SearchConfig     `mapstructure:"search"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Match      MatchConfig      `mapstructure:"match"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	MapGen     MapGenConfig     `mapstructure:"mapgen"`
}

// SearchConfig holds alpha-beta search settings
type SearchConfig struct {
	Depth         int    `mapstructure:"depth"`
	DiagonalMoves bool   `mapstructure:"diagonal_moves"`
	TimeBudgetMS  int    `mapstructure:"time_budget_ms"`
	ParallelRoot  bool   `mapstructure:"parallel_root"`
	MoveOrdering  string `mapstructure:"move_ordering"`
}

// TimeBudget returns the per-decision wall-clock limit, 0 for none
func (s SearchConfig) TimeBudget() time.Duration {
	return time.Duration(s.TimeBudgetMS) * time.Millisecond
}

// EvaluationConfig selects and tunes the static evaluation
type EvaluationConfig struct {
	Mode       string        `mapstructure:"mode"`
	Expression string        `mapstructure:"expression"`
	Weights    WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig holds the linear evaluation coefficients
type WeightsConfig struct {
	AliveAlly        float64 `mapstructure:"alive_ally"`
	AliveEnemy       float64 `mapstructure:"alive_enemy"`
	DamageDealt      float64 `mapstructure:"damage_dealt"`
	AllyHP           float64 `mapstructure:"ally_hp"`
	Attackable       float64 `mapstructure:"attackable"`
	Distance         float64 `mapstructure:"distance"`
	AdjacentObstacle float64 `mapstructure:"adjacent_obstacle"`
}

// MatchConfig holds self-play settings
type MatchConfig struct {
	MaxTurns int    `mapstructure:"max_turns"`
	Scenario string `mapstructure:"scenario"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MapGenConfig holds random scenario generation settings
type MapGenConfig struct {
	Width           int `mapstructure:"width"`
	Height          int `mapstructure:"height"`
	ObstacleRatio   int `mapstructure:"obstacle_ratio"`
	ControlledUnits int `mapstructure:"controlled_units"`
	HostileUnits    int `mapstructure:"hostile_units"`
	MinSideSpacing  int `mapstructure:"min_side_spacing"`
}

// Evaluation modes
const (
	EvalLinear = "linear"
	EvalExpr   = "expr"
)

var (
	// Global config instance. mu guards both pointers; a *Config is never
	// mutated after it is published, reloads swap in a new one.
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Search defaults
	v.SetDefault("search.depth", 3)
	v.SetDefault("search.diagonal_moves", false)
	v.SetDefault("search.time_budget_ms", 0)
	v.SetDefault("search.parallel_root", false)
	v.SetDefault("search.move_ordering", "attack_first")

	// Evaluation defaults
	v.SetDefault("evaluation.mode", EvalLinear)
	v.SetDefault("evaluation.expression", "")
	v.SetDefault("evaluation.weights.alive_ally", 1000.0)
	v.SetDefault("evaluation.weights.alive_enemy", -1000.0)
	v.SetDefault("evaluation.weights.damage_dealt", 20.0)
	v.SetDefault("evaluation.weights.ally_hp", 5.0)
	v.SetDefault("evaluation.weights.attackable", 15.0)
	v.SetDefault("evaluation.weights.distance", -10.0)
	v.SetDefault("evaluation.weights.adjacent_obstacle", -2.0)

	// Match defaults
	v.SetDefault("match.max_turns", 50)
	v.SetDefault("match.scenario", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Map generation defaults
	v.SetDefault("mapgen.width", 8)
	v.SetDefault("mapgen.height", 8)
	v.SetDefault("mapgen.obstacle_ratio", 12)
	v.SetDefault("mapgen.controlled_units", 2)
	v.SetDefault("mapgen.hostile_units", 2)
	v.SetDefault("mapgen.min_side_spacing", 3)
}

// Init initializes the configuration. A missing file at an explicit path is
// not an error; defaults and environment variables apply.
func Init(configPath string) error {
	nv := viper.New()

	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("/etc/skirmish")
	}

	// SKIRMISH_SEARCH_DEPTH overrides search.depth
	nv.SetEnvPrefix("SKIRMISH")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath == "" && !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	next := &Config{}
	if err := nv.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	v, cfg = nv, next
	mu.Unlock()
	return nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}

	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	mu.Lock()
	defer mu.Unlock()
	v.Set(key, value)
	next := &Config{}
	if err := v.Unmarshal(next); err == nil {
		cfg = next
	}
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	return v.ConfigFileUsed()
}

// WatchConfig hot-reloads the config file. A reload that fails validation is
// dropped and the previous configuration stays in effect. Reloads from a
// viper instance replaced by a later Init are ignored.
func WatchConfig(onChange func(*Config), onError func(error)) {
	mu.RLock()
	watched := v
	mu.RUnlock()

	watched.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		next, err := reload(watched)
		if err == nil && v == watched {
			cfg = next
		}
		mu.Unlock()

		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		if onChange != nil {
			onChange(next)
		}
	})
	watched.WatchConfig()
}

func reload(from *viper.Viper) (*Config, error) {
	next := &Config{}
	if err := from.Unmarshal(next); err != nil {
		return nil, err
	}
	if err := Validate(next); err != nil {
		return nil, err
	}
	return next, nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Search
	if c.Search.Depth <= 0 {
		return fmt.Errorf("search.depth must be positive")
	}
	if c.Search.TimeBudgetMS < 0 {
		return fmt.Errorf("search.time_budget_ms must be non-negative")
	}
	switch c.Search.MoveOrdering {
	case "attack_first", "generation":
	default:
		return fmt.Errorf("search.move_ordering must be attack_first or generation, got %q", c.Search.MoveOrdering)
	}

	// Evaluation
	switch c.Evaluation.Mode {
	case EvalLinear:
		if c.Evaluation.Weights.AliveAlly <= 0 {
			return fmt.Errorf("evaluation.weights.alive_ally must be positive")
		}
		if c.Evaluation.Weights.AliveEnemy >= 0 {
			return fmt.Errorf("evaluation.weights.alive_enemy must be negative")
		}
	case EvalExpr:
		if strings.TrimSpace(c.Evaluation.Expression) == "" {
			return fmt.Errorf("evaluation.expression is required when evaluation.mode is expr")
		}
	default:
		return fmt.Errorf("evaluation.mode must be linear or expr, got %q", c.Evaluation.Mode)
	}

	// Match
	if c.Match.MaxTurns <= 0 {
		return fmt.Errorf("match.max_turns must be positive")
	}

	// Logging
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	// Map generation
	if c.MapGen.Width <= 0 || c.MapGen.Height <= 0 {
		return fmt.Errorf("mapgen dimensions must be positive")
	}
	if c.MapGen.ObstacleRatio < 0 {
		return fmt.Errorf("mapgen.obstacle_ratio must be non-negative")
	}
	if c.MapGen.ControlledUnits < 1 || c.MapGen.HostileUnits < 1 {
		return fmt.Errorf("mapgen needs at least one unit per side")
	}
	if c.MapGen.MinSideSpacing < 0 {
		return fmt.Errorf("mapgen.min_side_spacing must be non-negative")
	}

	return nil
}
