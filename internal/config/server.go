package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/seed/internal/geom"
)

// EnvConfigPath overrides the config path passed on the command line.
const EnvConfigPath = "SEED_CONFIG"

// Snapshot storage drivers.
const (
	StorageNone     = "none"
	StorageLevelDB  = "leveldb"
	StoragePostgres = "postgres"
)

// Server holds all configuration for the seed server.
type Server struct {
	LogLevel         string        `yaml:"log_level"`
	TickInterval     time.Duration `yaml:"tick_interval"`
	AutosaveInterval time.Duration `yaml:"autosave_interval"`

	// Content
	MapPath  string `yaml:"map_path"`
	DefsPath string `yaml:"defs_path"`
	ImageDir string `yaml:"image_dir"`

	Quality QualityConfig `yaml:"quality"`
	Host    HostConfig    `yaml:"host"`
	Viewer  geom.Vec3     `yaml:"viewer"`
	Storage StorageConfig `yaml:"storage"`
}

// QualityConfig holds the level of detail settings.
type QualityConfig struct {
	LODBias float64 `yaml:"lod_bias"`
}

// HostConfig sizes the in-process world.
type HostConfig struct {
	MaxEntities   int     `yaml:"max_entities"`
	RegionSize    int     `yaml:"region_size"`
	CellSize      float64 `yaml:"cell_size"`
	MaxModelParts int     `yaml:"max_model_parts"`

	// Heightmap is an optional density image used as terrain; flat ground otherwise.
	Heightmap   string  `yaml:"heightmap"`
	HeightScale float64 `yaml:"height_scale"`
	// Models lists the visuals registered at startup.
	Models []ModelEntry `yaml:"models"`
}

// ModelEntry registers a model with its local bounds.
type ModelEntry struct {
	Name     string    `yaml:"name"`
	Min      geom.Vec3 `yaml:"min"`
	Max      geom.Vec3 `yaml:"max"`
	MaxParts int       `yaml:"max_parts"`
}

// StorageConfig selects where snapshots are kept.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Database DatabaseConfig `yaml:"database"`
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:         "info",
		TickInterval:     16 * time.Millisecond,
		AutosaveInterval: 5 * time.Minute,
		MapPath:          "maps/default.yaml",
		DefsPath:         "defs/entities.toml",
		ImageDir:         "textures",
		Quality:          QualityConfig{LODBias: 1},
		Host: HostConfig{
			MaxEntities:   4096,
			RegionSize:    2048,
			CellSize:      32,
			MaxModelParts: 64,
			HeightScale:   512,
		},
		Storage: StorageConfig{
			Driver: StorageLevelDB,
			Path:   "data/snapshots",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "seed",
				Password: "seed",
				DBName:   "seed",
				SSLMode:  "disable",
			},
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// ConfigPath returns SEED_CONFIG when set, else def.
func ConfigPath(def string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return def
}

// Level returns the slog level named by LogLevel, defaulting to info.
func (s Server) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (s Server) validate() error {
	switch s.Storage.Driver {
	case StorageNone, StorageLevelDB, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", s.Storage.Driver)
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", s.TickInterval)
	}
	return nil
}
