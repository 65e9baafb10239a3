package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ropes/internal/config"
	"ropes/internal/trace"
)

// setupTracing merges the trace flags over the [trace] table of cfg and
// initializes the tracer. It returns the tracer and a cleanup function.
func setupTracing(cmd *cobra.Command, cfg config.Config) (trace.Tracer, func(), error) {
	flags := cmd.Root().PersistentFlags()

	tc, err := cfg.TracerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace config: %w", err)
	}

	if flags.Changed("trace") {
		if tc.OutputPath, err = flags.GetString("trace"); err != nil {
			return nil, nil, fmt.Errorf("failed to get trace flag: %w", err)
		}
		if tc.Level == trace.LevelOff {
			tc.Level = trace.LevelPhase
		}
	}

	if flags.Changed("trace-level") {
		levelStr, err := flags.GetString("trace-level")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
		}
		if tc.Level, err = trace.ParseLevel(levelStr); err != nil {
			return nil, nil, fmt.Errorf("invalid trace level: %w", err)
		}
	}

	if flags.Changed("trace-mode") {
		modeStr, err := flags.GetString("trace-mode")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
		}
		if tc.Mode, err = trace.ParseMode(modeStr); err != nil {
			return nil, nil, fmt.Errorf("invalid trace mode: %w", err)
		}
	}

	if flags.Changed("trace-ring-size") {
		if tc.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
			return nil, nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
		}
	}

	// An explicit output file implies someone wants to read it.
	if tc.OutputPath != "" && tc.OutputPath != "-" && tc.Mode == trace.ModeRing {
		tc.Mode = trace.ModeBoth
	}

	if tc.Level == trace.LevelOff {
		ctx := trace.WithTracer(cmd.Context(), trace.Nop)
		cmd.SetContext(ctx)
		return trace.Nop, func() {}, nil
	}

	tracer, err := trace.New(tc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}
