package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for gopyan.
type Config struct {
	// DrawDefines controls whether defines edges are kept in the output graph.
	DrawDefines bool `yaml:"draw_defines" env:"GOPYAN_DRAW_DEFINES"`

	// DrawUses controls whether uses edges are kept in the output graph.
	DrawUses bool `yaml:"draw_uses" env:"GOPYAN_DRAW_USES"`

	// Root overrides the inferred project root. Empty means "infer".
	Root string `yaml:"root" env:"GOPYAN_ROOT"`

	// ColorByFile annotates each node with a display-only hue index.
	ColorByFile bool `yaml:"color_by_file" env:"GOPYAN_COLOR_BY_FILE"`

	// Annotate attaches filename:lineno to each node.
	Annotate bool `yaml:"annotate" env:"GOPYAN_ANNOTATE"`

	// GroupByFile, when set, clusters dot output into one subgraph per
	// source file.
	// Display-only; the core ignores it besides passing it through.
	GroupByFile bool `yaml:"group_by_file" env:"GOPYAN_GROUP_BY_FILE"`

	// Prune drops nodes with no incident edges (§4.7 orphan pruning).
	Prune bool `yaml:"prune" env:"GOPYAN_PRUNE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"GOPYAN_LOG_LEVEL"`

	// LogJSON switches the logger to JSON-line output.
	LogJSON bool `yaml:"log_json" env:"GOPYAN_LOG_JSON"`

	// NoCache disables reading and writing the graph cache.
	NoCache bool `yaml:"no_cache" env:"GOPYAN_NO_CACHE"`

	// CacheDir is where graph-cache msgpack files are stored, relative to
	// the project root unless absolute.
	CacheDir string `yaml:"cache_dir" env:"GOPYAN_CACHE_DIR"`

	// Yes skips interactive prompts (ambiguous root, cache overwrite).
	Yes bool `yaml:"yes" env:"GOPYAN_YES"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DrawDefines: true,
		DrawUses:    true,
		Root:        "",
		ColorByFile: false,
		Annotate:    false,
		GroupByFile: false,
		Prune:       false,
		LogLevel:    "info",
		LogJSON:     false,
		NoCache:     false,
		CacheDir:    ".gopyan/cache",
		Yes:         false,
	}
}

// globalConfigFilePath returns the global config file path (~/.gopyan/config.yaml).
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gopyan/config.yaml"
	}
	return filepath.Join(home, ".gopyan", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.gopyan/config.yaml).
func projectConfigFilePath() string {
	return ".gopyan/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.gopyan/config.yaml)
// 3. Global config (~/.gopyan/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path, creating
// parent directories if needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GOPYAN_DRAW_DEFINES"); v != "" {
		cfg.DrawDefines = parseBool(v, cfg.DrawDefines)
	}
	if v := os.Getenv("GOPYAN_DRAW_USES"); v != "" {
		cfg.DrawUses = parseBool(v, cfg.DrawUses)
	}
	if v := os.Getenv("GOPYAN_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("GOPYAN_COLOR_BY_FILE"); v != "" {
		cfg.ColorByFile = parseBool(v, cfg.ColorByFile)
	}
	if v := os.Getenv("GOPYAN_ANNOTATE"); v != "" {
		cfg.Annotate = parseBool(v, cfg.Annotate)
	}
	if v := os.Getenv("GOPYAN_GROUP_BY_FILE"); v != "" {
		cfg.GroupByFile = parseBool(v, cfg.GroupByFile)
	}
	if v := os.Getenv("GOPYAN_PRUNE"); v != "" {
		cfg.Prune = parseBool(v, cfg.Prune)
	}
	if v := os.Getenv("GOPYAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GOPYAN_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v, cfg.LogJSON)
	}
	if v := os.Getenv("GOPYAN_NO_CACHE"); v != "" {
		cfg.NoCache = parseBool(v, cfg.NoCache)
	}
	if v := os.Getenv("GOPYAN_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GOPYAN_YES"); v != "" {
		cfg.Yes = parseBool(v, cfg.Yes)
	}
}

// Validate checks that the configuration has valid required fields.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}
	return nil
}

func parseBool(s string, fallback bool) bool {
	switch s {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}
