// Package commands implements the sdui command line.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sdui "github.com/goliatone/go-sdui"
	"github.com/goliatone/go-sdui/internal/prompt"
	"github.com/goliatone/go-sdui/pkg/config"
	"github.com/goliatone/go-sdui/pkg/telemetry"
)

// globals holds the persistent flags and collaborators shared by commands.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	prompt     prompt.Driver
}

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	g := &globals{prompt: prompt.NewSurveyDriver()}
	return newRootCommand(g, version, commit, buildDate).ExecuteContext(ctx)
}

func newRootCommand(g *globals, version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sdui",
		Short: "Server driven UI layout engine",
		Long: `sdui resolves server supplied page layouts into rendered pages.

Layouts are ordered lists of typed widgets. Unknown or malformed widgets are
skipped, and a default layout replaces pages that cannot be loaded.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(newRenderCommand(g))
	rootCmd.AddCommand(newValidateCommand(g))
	rootCmd.AddCommand(newServeCommand(g))

	return rootCmd
}

// loadConfig reads the config file and applies the logging flags.
func (g *globals) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	return cfg, nil
}

// newEngine builds the logger and engine for cfg. The closer releases the
// log output.
func (g *globals) newEngine(cfg config.Config, options ...sdui.Option) (*sdui.Engine, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, closer, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	engine, err := sdui.NewEngine(cfg, append([]sdui.Option{sdui.WithLogger(logger)}, options...)...)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return engine, closer, nil
}
