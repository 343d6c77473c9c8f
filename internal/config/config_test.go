package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "github.com/nuskha/nuskha/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nuskha.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileValues_OverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
convert:
  dest_folder: out
  overwrite: true
  reflow_width: 60
  milestone_length: 150
  extensions: [epub, html]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.Convert.DestFolder)
	require.True(t, cfg.Convert.Overwrite)
	require.Equal(t, 60, cfg.Convert.ReflowWidth)
	require.Equal(t, 150, cfg.Convert.MilestoneLength)
	require.Equal(t, []string{"epub", "html"}, cfg.Convert.Extensions)
}

func TestLoad_PartialFile_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, "convert:\n  dest_folder: out\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 72, cfg.Convert.ReflowWidth)
	require.Equal(t, 500, cfg.Watch.DebounceMillis)
	require.False(t, cfg.Convert.Overwrite)
}

func TestLoad_UnknownOption_Fatal(t *testing.T) {
	path := writeConfig(t, "convert:\n  dest_foldr: out\n")

	_, err := Load(path)
	require.Error(t, err)
	var cerr *cerrors.CorpusError
	require.True(t, cerrors.As(err, &cerr))
	require.Equal(t, cerrors.SeverityFatal, cerr.Severity)
}

func TestLoad_ExplicitMissingFile_Error(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_DefaultPathMissing_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 72, cfg.Convert.ReflowWidth)
	require.Equal(t, 300, cfg.Convert.MilestoneLength)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "convert:\n  reflow_width: 60\n")
	t.Setenv("NUSKHA_REFLOW_WIDTH", "90")
	t.Setenv("NUSKHA_OVERWRITE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 90, cfg.Convert.ReflowWidth)
	require.True(t, cfg.Convert.Overwrite)
}

func TestLoad_NegativeWidth_Invalid(t *testing.T) {
	path := writeConfig(t, "convert:\n  reflow_width: -1\n")

	_, err := Load(path)
	require.Error(t, err)
	var cerr *cerrors.CorpusError
	require.True(t, cerrors.As(err, &cerr))
	require.Equal(t, "convert.reflow_width", cerr.Context["field"])
}

func TestInit_WritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nuskha.yaml")

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 72, cfg.Convert.ReflowWidth)
}

func TestInit_ExistingFile_RequiresForce(t *testing.T) {
	path := writeConfig(t, "convert: {}\n")

	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}
