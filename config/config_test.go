package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shoenig/test/must"

	"hashviz/engine"
	"hashviz/generator"
	"hashviz/hashmod"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	must.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_Default(t *testing.T) {
	def := Default()
	must.NotNil(t, def)
	must.Eq(t, "info", def.LogLevel)
	must.False(t, def.LogJson)
	must.Eq(t, ".", def.OutputDir)
	must.Eq(t, "lottery", def.Run.Mechanism)
	must.Eq(t, "polynomial", def.Run.Algorithm)
	must.Eq(t, 1000, def.Run.HashTableLength)
	must.NoError(t, def.Validate())

	rc, err := def.RunConfiguration()
	must.NoError(t, err)
	must.Eq(t, engine.DefaultRunConfiguration(), rc)
}

func TestAgent_Merge(t *testing.T) {
	base := Default()

	cfg1 := &Agent{
		OutputDir: "/tmp/images",
		Run: &Run{
			Algorithm:       "increasing",
			HashTableLength: 4096,
		},
	}
	cfg2 := &Agent{
		LogLevel: "trace",
		LogJson:  true,
		Run: &Run{
			Mechanism:        "dictionary",
			DictionaryPath:   "~/words.txt",
			CustomDictionary: true,
			QueueSize:        16,
		},
		Telemetry: &Telemetry{StatsdAddr: "127.0.0.1:8125"},
	}

	result := base.Merge(cfg1).Merge(cfg2)
	must.Eq(t, "trace", result.LogLevel)
	must.True(t, result.LogJson)
	must.Eq(t, "/tmp/images", result.OutputDir)
	must.Eq(t, "increasing", result.Run.Algorithm)
	must.Eq(t, "dictionary", result.Run.Mechanism)
	must.Eq(t, 4096, result.Run.HashTableLength)
	must.Eq(t, 16, result.Run.QueueSize)
	must.Eq(t, 512, result.Run.ImageWidth)
	must.Eq(t, "127.0.0.1:8125", result.Telemetry.StatsdAddr)

	// The base is left untouched.
	must.Eq(t, "polynomial", base.Run.Algorithm)
	must.Eq(t, 8, base.Run.QueueSize)

	rc, err := result.RunConfiguration()
	must.NoError(t, err)
	must.Eq(t, generator.MechanismDictionary, rc.Mechanism)
	must.Eq(t, hashmod.AlgorithmIncreasing, rc.Algorithm)
	must.Eq(t, uint64(4096), rc.HashTableLength)
	must.True(t, rc.CustomDictionary)
}

func TestAgent_RunConfiguration_DictionaryPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	cfg := Default().Merge(&Agent{Run: &Run{Mechanism: "dictionary", DictionaryPath: path}})

	rc, err := cfg.RunConfiguration()
	must.NoError(t, err)
	must.True(t, rc.CustomDictionary)
	must.Eq(t, path, rc.DictionaryPath)

	rc, err = Default().RunConfiguration()
	must.NoError(t, err)
	must.False(t, rc.CustomDictionary)
}

func TestAgent_Validate(t *testing.T) {
	cfg := &Agent{
		LogLevel: "loud",
		Run: &Run{
			Mechanism:        "roulette",
			Algorithm:        "md5",
			QueueSize:        -1,
			BucketHeight:     150,
			CustomDictionary: true,
		},
	}

	err := cfg.Validate()
	must.Error(t, err)
	must.StrContains(t, err.Error(), `invalid log_level "loud"`)
	must.StrContains(t, err.Error(), `unknown generation mechanism "roulette"`)
	must.StrContains(t, err.Error(), `unknown algorithm "md5"`)
	must.StrContains(t, err.Error(), "queue_size can't be negative")
	must.StrContains(t, err.Error(), "bucket_height must be between 0 and 100")
	must.StrContains(t, err.Error(), "custom_dictionary requires dictionary_path")

	must.NoError(t, (&Agent{}).Validate())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hashviz.hcl", `
log_level  = "debug"
output_dir = "/var/lib/hashviz"

run {
  mechanism         = "dictionary"
  algorithm         = "increasing"
  hash_table_length = 257
  queue_size        = 2
  point_size        = 2.5
  bucket_height     = 40
  seed              = 99
}

telemetry {
  statsite_address = "statsite:8125"
}
`)

	cfg, err := Load(path)
	must.NoError(t, err)
	must.Eq(t, "debug", cfg.LogLevel)
	must.Eq(t, "/var/lib/hashviz", cfg.OutputDir)
	must.Eq(t, "dictionary", cfg.Run.Mechanism)
	must.Eq(t, 257, cfg.Run.HashTableLength)
	must.Eq(t, 2.5, cfg.Run.PointSize)
	must.Eq(t, 40.0, cfg.Run.BucketHeight)
	must.Eq(t, 99, cfg.Run.Seed)
	must.Eq(t, "statsite:8125", cfg.Telemetry.StatsiteAddr)
}

func TestLoadPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01-base.hcl", `
run {
  queue_size = 3
  algorithm  = "increasing"
}
`)
	writeFile(t, dir, "02-override.json", `{"run": {"queue_size": 5}}`)
	writeFile(t, dir, "README.md", `ignored`)

	cfg, err := LoadPaths([]string{dir})
	must.NoError(t, err)
	must.Eq(t, 5, cfg.Run.QueueSize)
	must.Eq(t, "increasing", cfg.Run.Algorithm)
	must.Eq(t, 1000, cfg.Run.HashTableLength)
	must.Eq(t, "info", cfg.LogLevel)
}

func TestLoadPaths_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPaths([]string{filepath.Join(dir, "missing.hcl")})
	must.ErrorContains(t, err, "error loading configuration")

	bad := writeFile(t, dir, "bad.hcl", `run { queue_size = -4 }`)
	_, err = LoadPaths([]string{bad})
	must.ErrorContains(t, err, "invalid configuration")
	must.ErrorContains(t, err, "queue_size can't be negative")

	broken := writeFile(t, dir, "broken.hcl", `run {`)
	_, err = Load(broken)
	must.ErrorContains(t, err, "error parsing config file")

	empty := t.TempDir()
	cfg, err := Load(empty)
	must.NoError(t, err)
	must.Nil(t, cfg.Run)
}

func TestAgent_ResolvedOutputDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg := &Agent{OutputDir: "~/images"}
	dir, err := cfg.ResolvedOutputDir()
	must.NoError(t, err)
	must.Eq(t, filepath.Join(home, "images"), dir)
}
