// Package commands wires gopyan's cobra command tree: a root command plus
// analyze and nodes subcommands, matching the teacher's cmd/gcq layout
// trimmed to this analyzer's scope (no daemon/semantic/embedding
// subcommands — see DESIGN.md).
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/gopyan/internal/config"
	"github.com/l3aro/gopyan/internal/log"
)

// version is set by the release build via -ldflags; "dev" otherwise.
var version = "dev"

var (
	cfgFile string
	verbose bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "gcq",
		Short:   "gopyan — a static call-graph analyzer for Python",
		Version: version,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a gopyan config YAML file (default: layered global/project/env)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newNodesCmd())
	return root
}

// loadConfig resolves the layered config, honoring --config if given, and
// wires the logger's level from --verbose / the resolved log level.
func loadConfig() (*config.Config, log.Logger, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := log.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = log.DebugLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	logger := log.New(log.LoggerConfig{Level: level, JSONOutput: cfg.LogJSON})
	return cfg, logger, nil
}
