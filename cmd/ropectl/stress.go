package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/rope"
	"ropes/internal/ui"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Race concurrent readers over freshly built ropes",
	Long: `Stress builds random rope trees and lets several goroutines force their
lazily computed attributes at the same time, checking every result against a
plain string model`,
	Args: cobra.NoArgs,
	RunE: runStress,
}

func init() {
	stressCmd.Flags().Int("workers", runtime.GOMAXPROCS(0), "concurrent readers per tree")
	stressCmd.Flags().Int("rounds", 200, "number of trees to build")
	stressCmd.Flags().Int("steps", 40, "factory operations per tree")
	stressCmd.Flags().Uint64("seed", 1, "random seed")
	addProfileFlags(stressCmd)
	stressCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

type stressConfig struct {
	workers int
	rounds  int
	steps   int
	seed    uint64
}

// observation is what one reader saw of a tree.
type observation struct {
	codeRange coderange.Tag
	chars     int
	hash      uint64
}

func runStress(cmd *cobra.Command, _ []string) error {
	var cfg stressConfig
	var err error
	if cfg.workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return fmt.Errorf("failed to get workers flag: %w", err)
	}
	if cfg.rounds, err = cmd.Flags().GetInt("rounds"); err != nil {
		return fmt.Errorf("failed to get rounds flag: %w", err)
	}
	if cfg.steps, err = cmd.Flags().GetInt("steps"); err != nil {
		return fmt.Errorf("failed to get steps flag: %w", err)
	}
	if cfg.seed, err = cmd.Flags().GetUint64("seed"); err != nil {
		return fmt.Errorf("failed to get seed flag: %w", err)
	}
	if cfg.workers <= 0 || cfg.rounds <= 0 || cfg.steps <= 0 {
		return fmt.Errorf("--workers, --rounds and --steps must be positive")
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

	names := make([]string, cfg.workers)
	for i := range names {
		names[i] = fmt.Sprintf("reader %d", i)
	}
	err = runWithProgress(cmd.OutOrStdout(), "stress", names, useTUI, func(report func(ui.Event)) error {
		return stressRounds(cmd.Context(), s.factory, cfg, names, report)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stress: %d rounds x %d readers agreed\n", cfg.rounds, cfg.workers)
	return nil
}

// stressRounds builds one random tree per round and checks it with
// cfg.workers concurrent readers.
func stressRounds(ctx context.Context, f *rope.Factory, cfg stressConfig, names []string, report func(ui.Event)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rng := rand.New(rand.NewPCG(cfg.seed, ^cfg.seed))
	for round := range cfg.rounds {
		r, model, err := randomTree(f, rng, cfg.steps)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}

		seen := make([]observation, cfg.workers)
		g, gctx := errgroup.WithContext(ctx)
		for w := range cfg.workers {
			seed := rng.Uint64()
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				obs, err := readTree(r, model, seed)
				if err != nil {
					report(ui.Event{Item: names[w], Status: ui.StatusError, Done: round, Total: cfg.rounds, Note: err.Error()})
					return fmt.Errorf("round %d, %s: %w", round, names[w], err)
				}
				seen[w] = obs
				report(ui.Event{Item: names[w], Status: ui.StatusWorking, Done: round + 1, Total: cfg.rounds})
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for w := 1; w < len(seen); w++ {
			if seen[w] != seen[0] {
				return fmt.Errorf("round %d: %s saw %+v, %s saw %+v", round, names[0], seen[0], names[w], seen[w])
			}
		}
	}
	for _, name := range names {
		report(ui.Event{Item: name, Status: ui.StatusDone, Done: cfg.rounds, Total: cfg.rounds})
	}
	return nil
}

// readTree forces the lazy attributes of r in an order chosen by seed and
// checks them against model.
func readTree(r *rope.Rope, model string, seed uint64) (observation, error) {
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	var obs observation
	checks := []func() error{
		func() error {
			obs.codeRange = r.CodeRange()
			return nil
		},
		func() error {
			obs.chars = r.CharacterLength()
			if want := utf8.RuneCountInString(model); r.CodeRange() != coderange.Broken && obs.chars != want {
				return fmt.Errorf("character length %d, want %d", obs.chars, want)
			}
			return nil
		},
		func() error {
			obs.hash = r.Hash()
			if want := rope.HashBytes([]byte(model), r.Encoding().Index()); obs.hash != want {
				return fmt.Errorf("hash %016x, want %016x", obs.hash, want)
			}
			return nil
		},
		func() error {
			if got := r.Materialize().String(); got != model {
				return fmt.Errorf("content %s, want %s", rope.Preview([]byte(got), 32), rope.Preview([]byte(model), 32))
			}
			return nil
		},
		func() error {
			if len(model) == 0 {
				return nil
			}
			for range 8 {
				i := rng.IntN(len(model))
				b, err := r.ByteAt(i)
				if err != nil {
					return err
				}
				if b != model[i] {
					return fmt.Errorf("byte %d is %#x, want %#x", i, b, model[i])
				}
			}
			return nil
		},
	}
	rng.Shuffle(len(checks), func(i, j int) { checks[i], checks[j] = checks[j], checks[i] })
	for _, check := range checks {
		if err := check(); err != nil {
			return observation{}, err
		}
	}
	return obs, nil
}

var stressPieces = []string{"a", "rope", "héllo", "日本", "0123456789", "été", " "}

// randomTree applies steps random factory operations and returns the result
// together with the string it must equal. Nothing is forced along the way.
func randomTree(f *rope.Factory, rng *rand.Rand, steps int) (*rope.Rope, string, error) {
	const maxBytes = 1 << 16
	pool := []*rope.Rope{f.Empty(enc.UTF8)}
	models := []string{""}
	for range steps {
		var (
			r     *rope.Rope
			model string
			err   error
		)
		switch op := rng.IntN(4); op {
		case 0:
			text := stressPieces[rng.IntN(len(stressPieces))]
			r, model = f.FromString(text, enc.UTF8, coderange.Unknown), text
		case 1:
			i, j := rng.IntN(len(pool)), rng.IntN(len(pool))
			if len(models[i])+len(models[j]) > maxBytes {
				continue
			}
			r, err = f.Concat(pool[i], pool[j])
			model = models[i] + models[j]
		case 2:
			i := rng.IntN(len(pool))
			n := len(models[i])
			off := rng.IntN(n + 1)
			length := rng.IntN(n - off + 1)
			r, err = f.Substring(pool[i], off, length)
			model = models[i][off : off+length]
		case 3:
			i := rng.IntN(len(pool))
			count := rng.IntN(5)
			if len(models[i])*count > maxBytes {
				continue
			}
			r, err = f.Repeat(pool[i], count)
			model = strings.Repeat(models[i], count)
		}
		if err != nil {
			return nil, "", err
		}
		pool = append(pool, r)
		models = append(models, model)
	}
	last := len(pool) - 1
	return pool[last], models[last], nil
}
