package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	ui := cli.NewMockUi()
	c := &VersionCommand{Version: "1.2.3", Ui: ui}

	assert.Equal(t, 0, c.Run(nil))
	assert.Equal(t, "1.2.3\n", ui.OutputWriter.String())
	assert.NotEmpty(t, c.Synopsis())
}

func TestAlgorithmsCommand(t *testing.T) {
	ui := cli.NewMockUi()
	c := &AlgorithmsCommand{Ui: ui}

	require.Equal(t, 0, c.Run(nil))
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "polynomial")
	assert.Contains(t, out, "Original Polynomial Hash")
	assert.Contains(t, out, "increasing")
	assert.Contains(t, out, "Increasing Polynomial Hash")
}

func TestBenchCommand(t *testing.T) {
	ui := cli.NewMockUi()
	c := &BenchCommand{Ui: ui}

	code := c.Run([]string{"-iterations", "1", "-tickets", "50", "-table-length", "64"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	out := ui.OutputWriter.String()
	assert.Contains(t, out, "Hash Strategy Benchmark Results")
	assert.Contains(t, out, "Original Polynomial Hash")
	assert.Contains(t, out, "Increasing Polynomial Hash")
	assert.Contains(t, out, "/64")
}

func TestBenchCommand_InvalidIterations(t *testing.T) {
	ui := cli.NewMockUi()
	c := &BenchCommand{Ui: ui}

	assert.Equal(t, 1, c.Run([]string{"-iterations", "0", "-tickets", "1"}))
	assert.Contains(t, ui.ErrorWriter.String(), "iterations must be positive")
}

func TestBenchInputs(t *testing.T) {
	words, err := benchInputs(0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, words)
	assert.Equal(t, "able", words[0].String())

	all, err := benchInputs(25, 3)
	require.NoError(t, err)
	assert.Len(t, all, len(words)+25)
}

func TestRunCommand_SavesImages(t *testing.T) {
	dir := t.TempDir()
	ui := cli.NewMockUi()
	c := &RunCommand{Ctx: context.Background(), Ui: ui}

	code := c.Run([]string{
		"-out", dir,
		"-log-level", "off",
		"-mechanism", "lottery",
		"-algorithm", "increasing",
		"-inputs", "200",
		"-table-length", "16",
		"-queue-size", "2",
		"-image-width", "32",
		"-image-height", "32",
	})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	out := ui.OutputWriter.String()
	assert.Contains(t, out, "Increasing Polynomial Hash over 200 lottery inputs")
	assert.Contains(t, out, "Buckets: 16")

	for _, name := range []string{hashImageFile, bucketImageFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
}

func TestRunCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hashviz.hcl")
	cfgBody := `
log_level = "off"
output_dir = "` + filepath.ToSlash(dir) + `"

run {
  mechanism         = "dictionary"
  number_of_inputs  = 40
  hash_table_length = 8
  image_width       = 16
  image_height      = 16
}
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))

	ui := cli.NewMockUi()
	c := &RunCommand{Ui: ui}

	code := c.Run([]string{"-config", cfgPath})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), "over 40 dictionary inputs")

	_, err := os.Stat(filepath.Join(dir, hashImageFile))
	assert.NoError(t, err)
}

func TestRunCommand_MissingDictionary(t *testing.T) {
	dir := t.TempDir()
	ui := cli.NewMockUi()
	c := &RunCommand{Ui: ui}

	code := c.Run([]string{
		"-out", dir,
		"-log-level", "off",
		"-mechanism", "dictionary",
		"-dictionary", filepath.Join(dir, "missing.txt"),
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "run failed")

	_, err := os.Stat(filepath.Join(dir, hashImageFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui := cli.NewMockUi()
	c := &RunCommand{Ctx: ctx, Ui: ui}

	code := c.Run([]string{
		"-out", t.TempDir(),
		"-log-level", "off",
		"-inputs", "100000000",
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "Run cancelled")
}

func TestRunCommand_InvalidFlags(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
		{"bad algorithm", []string{"-algorithm", "sha"}, "flags:"},
		{"bad mechanism", []string{"-mechanism", "dice"}, "flags:"},
		{"negative inputs", []string{"-inputs", "-1"}, "number_of_inputs can't be negative"},
		{"extra args", []string{"leftover"}, "unexpected arguments"},
		{"missing config", []string{"-config", "/does/not/exist.hcl"}, "error loading configuration"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ui := cli.NewMockUi()
			c := &RunCommand{Ui: ui}

			assert.Equal(t, 1, c.Run(tc.args))
			assert.Contains(t, ui.ErrorWriter.String(), tc.want)
		})
	}
}

func TestStringFlag(t *testing.T) {
	var s stringFlag
	require.NoError(t, s.Set("a.hcl"))
	require.NoError(t, s.Set("b.hcl"))
	assert.Equal(t, "a.hcl,b.hcl", s.String())
}
