package config

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/fixit/internal/common"
	"github.com/spf13/viper"
)

// Default file names inside the data directory.
const (
	DefaultDataDir      = "$HOME/.local/share/fixit"
	DatabaseFile        = "fixit.db"
	ModelFile           = "department_model.json"
	RawDatasetFile      = "dataset.csv"
	ReducedDatasetFile  = "dataset_small.csv"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	defaultMinSupport   = 20
	defaultTestFraction = 0.2
	defaultMaxFeatures  = 20000
	defaultEpochs       = 20
	defaultSampleSize   = 20000
	defaultSeed         = 42
)

// Config is the resolved application configuration.
type Config struct {
	Logging     LoggingConfig
	Reduce      ReduceConfig
	DataDir     string
	Database    string
	ModelPath   string
	Departments string
	Train       TrainConfig
}

// LoggingConfig controls slog setup.
type LoggingConfig struct {
	Level  string
	Format string
}

// TrainConfig holds the offline training parameters.
type TrainConfig struct {
	Input        string
	TestFraction float64
	MinSupport   int
	MaxFeatures  int
	Epochs       int
	Seed         int64
}

// ReduceConfig holds the dataset reduction parameters.
type ReduceConfig struct {
	Input      string
	Output     string
	SampleSize int
	Seed       int64
}

// SetDefaults registers default values on v. File paths default to empty and
// are derived from data.dir in Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", DefaultDataDir)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("train.min_support", defaultMinSupport)
	v.SetDefault("train.test_fraction", defaultTestFraction)
	v.SetDefault("train.max_features", defaultMaxFeatures)
	v.SetDefault("train.epochs", defaultEpochs)
	v.SetDefault("train.seed", defaultSeed)
	v.SetDefault("reduce.sample_size", defaultSampleSize)
	v.SetDefault("reduce.seed", defaultSeed)
}

// Load resolves the configuration from v.
// Precedence is whatever v was set up with (flags, FIXIT_ env vars, config file),
// then the defaults registered by SetDefaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	dataDir := ExpandPath(v.GetString("data.dir"))
	inData := func(key, file string) string {
		if p := v.GetString(key); p != "" {
			return ExpandPath(p)
		}
		return filepath.Join(dataDir, file)
	}

	cfg := &Config{
		DataDir:     dataDir,
		Database:    inData("database.path", DatabaseFile),
		ModelPath:   inData("model.path", ModelFile),
		Departments: ExpandPath(v.GetString("departments.path")),
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Train: TrainConfig{
			Input:        inData("train.input", ReducedDatasetFile),
			MinSupport:   v.GetInt("train.min_support"),
			TestFraction: v.GetFloat64("train.test_fraction"),
			MaxFeatures:  v.GetInt("train.max_features"),
			Epochs:       v.GetInt("train.epochs"),
			Seed:         v.GetInt64("train.seed"),
		},
		Reduce: ReduceConfig{
			Input:      inData("reduce.input", RawDatasetFile),
			Output:     inData("reduce.output", ReducedDatasetFile),
			SampleSize: v.GetInt("reduce.sample_size"),
			Seed:       v.GetInt64("reduce.seed"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks numeric ranges.
func (c *Config) Validate() error {
	if c.Train.MinSupport < 1 {
		return fmt.Errorf("%w: train.min_support must be at least 1, got %d", common.ErrInvalidConfig, c.Train.MinSupport)
	}
	if c.Train.TestFraction <= 0 || c.Train.TestFraction >= 1 {
		return fmt.Errorf("%w: train.test_fraction must be between 0 and 1, got %g", common.ErrInvalidConfig, c.Train.TestFraction)
	}
	if c.Train.MaxFeatures < 1 {
		return fmt.Errorf("%w: train.max_features must be positive, got %d", common.ErrInvalidConfig, c.Train.MaxFeatures)
	}
	if c.Train.Epochs < 1 {
		return fmt.Errorf("%w: train.epochs must be positive, got %d", common.ErrInvalidConfig, c.Train.Epochs)
	}
	if c.Reduce.SampleSize < 1 {
		return fmt.Errorf("%w: reduce.sample_size must be positive, got %d", common.ErrInvalidConfig, c.Reduce.SampleSize)
	}
	return nil
}
