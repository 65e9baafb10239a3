package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"ropes/internal/config"
	"ropes/internal/dedup"
	"ropes/internal/intern"
	"ropes/internal/rope"
	"ropes/internal/trace"
)

// session is the per-command state built from ropes.toml and the flags.
type session struct {
	cfg     config.Config
	tracer  trace.Tracer
	factory *rope.Factory
	table   *intern.Table
	cache   *dedup.Cache
	span    *trace.Span
}

// openSession loads configuration, starts tracing and builds the factory,
// intern table and dedup cache. close must be called when the command ends.
func openSession(cmd *cobra.Command) (*session, func(), error) {
	if err := applyColor(cmd); err != nil {
		return nil, nil, err
	}

	dir, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if dir == "" {
		dir = "."
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, err
	}

	tracer, cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts, err := cfg.FactoryOptions(tracer)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	f := rope.NewFactory(opts)

	table, err := intern.NewStandard(f)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build intern table: %w", err)
	}
	capacity, err := cfg.DedupCapacity()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cache, err := dedup.New(capacity, table)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	s := &session{
		cfg:     cfg,
		tracer:  tracer,
		factory: f,
		table:   table,
		cache:   cache,
		span:    trace.Begin(tracer, trace.ScopeCommand, cmd.Name(), 0),
	}
	if cfg.Path != "" {
		s.span.Set("config", cfg.Path)
	}
	return s, func() {
		s.span.End("")
		cleanup()
	}, nil
}

// applyColor resolves --color for both fatih/color and lipgloss output.
func applyColor(cmd *cobra.Command) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	var useColor bool
	switch colorFlag {
	case "on":
		useColor = true
	case "off":
		useColor = false
	case "auto", "":
		useColor = isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	color.NoColor = !useColor
	if useColor {
		lipgloss.SetColorProfile(termenv.ANSI256)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}
