// Package config loads ropes.toml and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"ropes/internal/dedup"
	"ropes/internal/rope"
	"ropes/internal/trace"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "ropes.toml"

// Config is the decoded manifest. Path is empty when no file was found.
type Config struct {
	Path    string        `toml:"-"`
	Factory FactoryConfig `toml:"factory"`
	Trace   TraceConfig   `toml:"trace"`
	Dedup   DedupConfig   `toml:"dedup"`
}

type FactoryConfig struct {
	ConcatFlattenBytes int64 `toml:"concat_flatten_bytes"`
	RepeatFlattenBytes int64 `toml:"repeat_flatten_bytes"`
	MaxDepth           int64 `toml:"max_depth"`
	MaxByteLength      int64 `toml:"max_byte_length"`
}

type TraceConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Output   string `toml:"output"`
	Format   string `toml:"format"`
	RingSize int64  `toml:"ring_size"`
}

type DedupConfig struct {
	Capacity int64 `toml:"capacity"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Factory: FactoryConfig{
			ConcatFlattenBytes: rope.DefaultFlattenBytes,
			RepeatFlattenBytes: rope.DefaultFlattenBytes,
			MaxDepth:           rope.DefaultMaxDepth,
			MaxByteLength:      rope.DefaultMaxByteLength,
		},
		Trace: TraceConfig{
			Level:    "off",
			Mode:     "ring",
			Output:   "-",
			Format:   "auto",
			RingSize: 4096,
		},
		Dedup: DedupConfig{Capacity: dedup.DefaultCapacity},
	}
}

// Find walks from startDir towards the root looking for ropes.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads .env from startDir if present, then ropes.toml found from
// startDir, then ROPES_* environment overrides. A missing manifest is not an
// error.
func Load(startDir string) (Config, error) {
	envFile := filepath.Join(startDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("%s: %w", envFile, err)
		}
	}

	cfg := Default()
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if ok {
		if cfg, err = LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadFile decodes one manifest over the defaults. Unknown keys are errors.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("trace") && !meta.IsDefined("trace", "level") {
		return Config{}, fmt.Errorf("%s: [trace] requires level", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var envInts = []struct {
	name  string
	field func(*Config) *int64
}{
	{"ROPES_CONCAT_FLATTEN_BYTES", func(c *Config) *int64 { return &c.Factory.ConcatFlattenBytes }},
	{"ROPES_REPEAT_FLATTEN_BYTES", func(c *Config) *int64 { return &c.Factory.RepeatFlattenBytes }},
	{"ROPES_MAX_DEPTH", func(c *Config) *int64 { return &c.Factory.MaxDepth }},
	{"ROPES_MAX_BYTE_LENGTH", func(c *Config) *int64 { return &c.Factory.MaxByteLength }},
	{"ROPES_DEDUP_CAPACITY", func(c *Config) *int64 { return &c.Dedup.Capacity }},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, v := range envInts {
		raw, ok := lookup(v.name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
		*v.field(c) = n
	}
	if raw, ok := lookup("ROPES_TRACE_LEVEL"); ok && strings.TrimSpace(raw) != "" {
		c.Trace.Level = strings.TrimSpace(raw)
	}
	return nil
}

// Validate checks ranges and names, reporting the first offending key.
func (c Config) Validate() error {
	positive := []struct {
		key string
		v   int64
	}{
		{"factory.concat_flatten_bytes", c.Factory.ConcatFlattenBytes},
		{"factory.repeat_flatten_bytes", c.Factory.RepeatFlattenBytes},
		{"factory.max_depth", c.Factory.MaxDepth},
		{"factory.max_byte_length", c.Factory.MaxByteLength},
		{"trace.ring_size", c.Trace.RingSize},
		{"dedup.capacity", c.Dedup.Capacity},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.key, p.v)
		}
		if _, err := safecast.Conv[int](p.v); err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("trace.level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("trace.mode: %w", err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		return fmt.Errorf("trace.format: %w", err)
	}
	return nil
}

// FactoryOptions converts the [factory] table. The config must be valid.
func (c Config) FactoryOptions(tracer trace.Tracer) (rope.Options, error) {
	var opts rope.Options
	var err error
	if opts.ConcatFlattenBytes, err = safecast.Conv[int](c.Factory.ConcatFlattenBytes); err != nil {
		return rope.Options{}, err
	}
	if opts.RepeatFlattenBytes, err = safecast.Conv[int](c.Factory.RepeatFlattenBytes); err != nil {
		return rope.Options{}, err
	}
	if opts.MaxDepth, err = safecast.Conv[int](c.Factory.MaxDepth); err != nil {
		return rope.Options{}, err
	}
	if opts.MaxByteLength, err = safecast.Conv[int](c.Factory.MaxByteLength); err != nil {
		return rope.Options{}, err
	}
	opts.Tracer = tracer
	return opts, nil
}

// TracerConfig converts the [trace] table.
func (c Config) TracerConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	ring, err := safecast.Conv[int](c.Trace.RingSize)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output, RingSize: ring}, nil
}

// DedupCapacity returns [dedup].capacity as an int.
func (c Config) DedupCapacity() (int, error) {
	return safecast.Conv[int](c.Dedup.Capacity)
}
