package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/observ"
	"ropes/internal/rope"
	"ropes/internal/ui"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time the factory operations on synthetic input",
	Args:  cobra.NoArgs,
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().Int("ops", 100000, "operations per phase")
	benchCmd.Flags().Int("piece", 16, "bytes per generated leaf")
	benchCmd.Flags().Uint64("seed", 1, "random seed")
	benchCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	addProfileFlags(benchCmd)
	benchCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
}

type benchConfig struct {
	ops   int
	piece int
	seed  uint64
}

type benchPhase struct {
	name string
	run  func(report func(done int)) (bytes int64, err error)
}

type benchResult struct {
	observ.Report
	DedupHits   uint64 `json:"dedup_hits"`
	DedupMisses uint64 `json:"dedup_misses"`
}

func runBench(cmd *cobra.Command, _ []string) error {
	var cfg benchConfig
	var err error
	if cfg.ops, err = cmd.Flags().GetInt("ops"); err != nil {
		return fmt.Errorf("failed to get ops flag: %w", err)
	}
	if cfg.piece, err = cmd.Flags().GetInt("piece"); err != nil {
		return fmt.Errorf("failed to get piece flag: %w", err)
	}
	if cfg.seed, err = cmd.Flags().GetUint64("seed"); err != nil {
		return fmt.Errorf("failed to get seed flag: %w", err)
	}
	if cfg.ops <= 0 || cfg.piece <= 0 {
		return fmt.Errorf("--ops and --piece must be positive")
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	useTUI, err := resolveUI(uiFlag)
	if err != nil {
		return err
	}

	s, closeSession, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	phases := benchPhases(s, cfg)
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.name
	}

	timer := observ.NewTimer()
	progressOut := cmd.ErrOrStderr()
	if useTUI {
		progressOut = cmd.OutOrStdout()
	}
	err = runWithProgress(progressOut, "bench", names, useTUI, func(report func(ui.Event)) error {
		return runPhases(timer, phases, cfg.ops, report)
	})
	if err != nil {
		return err
	}

	stats := s.cache.Stats()
	out := cmd.OutOrStdout()
	if format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(benchResult{Report: timer.Report(), DedupHits: stats.Hits, DedupMisses: stats.Misses})
	}
	fmt.Fprint(out, timer.Summary())
	fmt.Fprintf(out, "dedup: %d hits, %d misses, %d cached\n", stats.Hits, stats.Misses, stats.Len)
	return nil
}

// runPhases times each phase in order, reporting progress roughly fifty
// times per phase.
func runPhases(timer *observ.Timer, phases []benchPhase, ops int, report func(ui.Event)) error {
	step := max(ops/50, 1)
	for _, p := range phases {
		report(ui.Event{Item: p.name, Status: ui.StatusWorking, Total: ops})
		idx := timer.Begin(p.name)
		bytes, err := p.run(func(done int) {
			if done%step == 0 {
				report(ui.Event{Item: p.name, Status: ui.StatusWorking, Done: done, Total: ops})
			}
		})
		if err != nil {
			timer.End(idx, 0, 0, err.Error())
			report(ui.Event{Item: p.name, Status: ui.StatusError, Note: err.Error()})
			return fmt.Errorf("%s: %w", p.name, err)
		}
		timer.End(idx, ops, bytes, "")
		report(ui.Event{Item: p.name, Status: ui.StatusDone, Done: ops, Total: ops})
	}
	return nil
}

// benchPhases builds the phase list. Later phases reuse what earlier ones
// produced, so they must run in order.
func benchPhases(s *session, cfg benchConfig) []benchPhase {
	f := s.factory
	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	leaves := make([]*rope.Rope, 0, cfg.ops)
	var joined *rope.Rope
	buf := make([]byte, cfg.piece)

	return []benchPhase{
		{name: "leaf", run: func(report func(int)) (int64, error) {
			for i := range cfg.ops {
				fillPiece(rng, buf)
				leaves = append(leaves, f.MakeLeaf(buf, enc.UTF8, coderange.Unknown))
				report(i + 1)
			}
			return int64(cfg.ops) * int64(cfg.piece), nil
		}},
		{name: "concat", run: func(report func(int)) (int64, error) {
			acc := f.Empty(enc.UTF8)
			for i, leaf := range leaves {
				next, err := f.Concat(acc, leaf)
				if err != nil {
					return 0, err
				}
				acc = next
				report(i + 1)
			}
			joined = acc
			return int64(acc.ByteLength()), nil
		}},
		{name: "substring", run: func(report func(int)) (int64, error) {
			var total int64
			size := joined.ByteLength()
			for i := range cfg.ops {
				off := rng.IntN(size)
				n := rng.IntN(size-off) + 1
				sub, err := f.Substring(joined, off, n)
				if err != nil {
					return 0, err
				}
				total += int64(sub.ByteLength())
				report(i + 1)
			}
			return total, nil
		}},
		{name: "repeat", run: func(report func(int)) (int64, error) {
			var total int64
			for i := range cfg.ops {
				r, err := f.Repeat(leaves[i], rng.IntN(64)+2)
				if err != nil {
					return 0, err
				}
				total += int64(r.ByteLength())
				report(i + 1)
			}
			return total, nil
		}},
		{name: "hash", run: func(report func(int)) (int64, error) {
			var total int64
			size := joined.ByteLength()
			for i := range cfg.ops {
				off := rng.IntN(size)
				sub, err := f.Substring(joined, off, min(size-off, 4*cfg.piece))
				if err != nil {
					return 0, err
				}
				sub.Hash()
				total += int64(sub.ByteLength())
				report(i + 1)
			}
			return total, nil
		}},
		{name: "flatten", run: func(report func(int)) (int64, error) {
			flat := f.Flatten(joined)
			report(cfg.ops)
			return int64(flat.ByteLength()), nil
		}},
		{name: "dedup", run: func(report func(int)) (int64, error) {
			var total int64
			pool := leaves[:min(len(leaves), 64)]
			for i := range cfg.ops {
				r := s.cache.Dedup(f.MakeLeaf(pool[rng.IntN(len(pool))].LeafBytes(), enc.UTF8, coderange.Unknown))
				total += int64(r.ByteLength())
				report(i + 1)
			}
			return total, nil
		}},
	}
}

const pieceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789 "

func fillPiece(rng *rand.Rand, buf []byte) {
	for i := range buf {
		buf[i] = pieceAlphabet[rng.IntN(len(pieceAlphabet))]
	}
}
