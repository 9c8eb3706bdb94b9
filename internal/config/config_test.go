package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "epubpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "project: myapp\nversion: 1.2.3\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "myapp", cfg.Project)
	assert.Equal(t, "./book", cfg.Output)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 0, cfg.Build.PageConcurrency)
	assert.False(t, cfg.Build.StrictAssembly)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsEmptyProject(t *testing.T) {
	path := writeConfig(t, "version: 1.0.0\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project name is required")
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("EPUBPACK_TEST_PROJECT", "envproj")
	path := writeConfig(t, "project: ${EPUBPACK_TEST_PROJECT}\nversion: 1.0.0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "envproj", cfg.Project)
}

func TestArchiveNaming(t *testing.T) {
	cfg := &Config{Project: "myapp", Version: "2.0.1", Output: "/out"}
	assert.Equal(t, "myapp-v2.0.1.epub", cfg.ArchiveName())
	assert.Equal(t, filepath.Join("/out", "myapp-v2.0.1.epub"), cfg.ArchivePath())
}

func TestExtraStemAndTitle(t *testing.T) {
	assert.Equal(t, "README", ExtraStem("docs/readme.md"))
	assert.Equal(t, "GETTING-STARTED", ExtraStem("Getting-Started.md"))

	cfg := &Config{Titles: map[string]string{"README": "About"}}
	assert.Equal(t, "About", cfg.ExtraTitle("readme.md"))
	assert.Equal(t, "CHANGELOG", cfg.ExtraTitle("CHANGELOG.md"))
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "en", NormalizeLanguage(""))
	assert.Equal(t, "en", NormalizeLanguage("not a tag!!"))
	assert.Equal(t, "pt-BR", NormalizeLanguage("pt-br"))
	assert.Equal(t, "de", NormalizeLanguage("de"))
}

func TestNormalizeLogLevelAndFormat(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epubpack.yaml")
	require.NoError(t, Init(path, false))

	// Second init without force fails.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myapp", cfg.Project)
	assert.NotEmpty(t, cfg.Extras)
}
