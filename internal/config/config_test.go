package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropes/internal/trace"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, FileName, `
[factory]
max_depth = 64
concat_flatten_bytes = 32

[trace]
level = "detail"
mode = "stream"
output = "trace.ndjson"

[dedup]
capacity = 10
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.EqualValues(t, 64, cfg.Factory.MaxDepth)
	assert.EqualValues(t, 32, cfg.Factory.ConcatFlattenBytes)
	assert.EqualValues(t, Default().Factory.RepeatFlattenBytes, cfg.Factory.RepeatFlattenBytes)

	opts, err := cfg.FactoryOptions(trace.Nop)
	require.NoError(t, err)
	assert.Equal(t, 64, opts.MaxDepth)
	assert.Equal(t, 32, opts.ConcatFlattenBytes)

	tc, err := cfg.TracerConfig()
	require.NoError(t, err)
	assert.Equal(t, trace.LevelDetail, tc.Level)
	assert.Equal(t, trace.ModeStream, tc.Mode)
	assert.Equal(t, "trace.ndjson", tc.OutputPath)

	capacity, err := cfg.DedupCapacity()
	require.NoError(t, err)
	assert.Equal(t, 10, capacity)
}

func TestLoadFileRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"unknown key", "[factory]\nmax_dept = 3\n", "unknown keys: factory.max_dept"},
		{"non-positive", "[factory]\nmax_depth = 0\n", "factory.max_depth must be positive"},
		{"bad level", "[trace]\nlevel = \"loud\"\n", "trace.level"},
		{"trace without level", "[trace]\nmode = \"ring\"\n", "[trace] requires level"},
		{"syntax", "[factory\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), FileName, tc.body)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ROPES_MAX_DEPTH":      "12",
		"ROPES_TRACE_LEVEL":    "debug",
		"ROPES_DEDUP_CAPACITY": " ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.EqualValues(t, 12, cfg.Factory.MaxDepth)
	assert.Equal(t, "debug", cfg.Trace.Level)
	assert.EqualValues(t, Default().Dedup.Capacity, cfg.Dedup.Capacity)

	env["ROPES_MAX_DEPTH"] = "deep"
	err := cfg.applyEnv(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROPES_MAX_DEPTH")
}

func TestLoadFindsManifestUpwards(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "[factory]\nrepeat_flatten_bytes = 256\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	t.Setenv("ROPES_MAX_DEPTH", "40")
	cfg, err := Load(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), cfg.Path)
	assert.EqualValues(t, 256, cfg.Factory.RepeatFlattenBytes)
	assert.EqualValues(t, 40, cfg.Factory.MaxDepth)
}

func TestLoadReadsDotEnv(t *testing.T) {
	require.NoError(t, os.Unsetenv("ROPES_DEDUP_CAPACITY"))
	t.Cleanup(func() { _ = os.Unsetenv("ROPES_DEDUP_CAPACITY") })

	dir := t.TempDir()
	writeFile(t, dir, ".env", "ROPES_DEDUP_CAPACITY=77\n")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.EqualValues(t, 77, cfg.Dedup.Capacity)
	assert.Empty(t, cfg.Path)
}
