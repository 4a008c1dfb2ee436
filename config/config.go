// Package config loads the run configuration and the plant description
// from YAML or JSON files, with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// PlantFile points at the plant description (YAML or JSON). Time
	// series may live inline in that file or in the CSV files below.
	PlantFile string       `json:"plant_file"`
	Series    SeriesConfig `json:"series"`
	// Objective selects the build strategy: max_profit, stability or
	// min_load_jumps.
	Objective string        `json:"objective"`
	Solver    SolverConfig  `json:"solver"`
	Output    OutputConfig  `json:"output"`
	Metrics   MetricsConfig `json:"metrics"`
	Logging   LoggingConfig `json:"logging"`
}

// LoggingConfig sets the minimum level for the zerolog output.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SeriesConfig names optional CSV files overriding the inline time
// series of the plant file. Each file carries one value per row.
type SeriesConfig struct {
	PriceFile      string `json:"price_file"`
	GenerationFile string `json:"generation_file"`
}

// SolverConfig tunes the in-process branch-and-bound solver.
type SolverConfig struct {
	// Enabled runs the in-process solver after the build. When false the
	// model is only exported.
	Enabled   bool          `json:"enabled"`
	TimeLimit time.Duration `json:"time_limit"`
	MaxNodes  int           `json:"max_nodes"`
	AbsGap    float64       `json:"abs_gap"`
}

// OutputConfig names the run artifacts.
type OutputConfig struct {
	Dir string `json:"dir"`
	// ScheduleFile and SummaryFile are only written after a solve.
	ScheduleFile string `json:"schedule_file"`
	SummaryFile  string `json:"summary_file"`
	// ModelFile, when set, receives the model in CPLEX LP format.
	ModelFile string `json:"model_file"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FLEXBATCH_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "flexbatch_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Objective == "" {
		c.Objective = "max_profit"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.ScheduleFile == "" {
		c.Output.ScheduleFile = "schedule.csv"
	}
	if c.Output.SummaryFile == "" {
		c.Output.SummaryFile = "summary.json"
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c *Config) Validate() error {
	if c.PlantFile == "" {
		return fmt.Errorf("plant_file is required")
	}
	if c.Solver.TimeLimit < 0 {
		return fmt.Errorf("solver.time_limit must not be negative")
	}
	if c.Solver.MaxNodes < 0 {
		return fmt.Errorf("solver.max_nodes must not be negative")
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".dat":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}
