package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCLI(t *testing.T, args ...string) (*kong.Context, *CLI) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli
}

func TestCLIGrammar(t *testing.T) {
	ctx, cli := parseCLI(t, "build", "-o", "./out", "--strict")
	assert.Equal(t, "build", ctx.Command())
	assert.Equal(t, "./out", cli.Build.Output)
	assert.True(t, cli.Build.Strict)
	assert.Equal(t, "epubpack.yaml", cli.Config)

	ctx, cli = parseCLI(t, "-c", "custom.yaml", "init", "--force")
	assert.Equal(t, "init", ctx.Command())
	assert.Equal(t, "custom.yaml", cli.Config)
	assert.True(t, cli.Init.Force)

	ctx, cli = parseCLI(t, "watch", "--metrics-addr", ":9090")
	assert.Equal(t, "watch", ctx.Command())
	assert.Equal(t, ":9090", cli.Watch.MetricsAddr)
}

func TestInitCommandWritesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "epubpack.yaml")

	cmd := &InitCmd{}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "project:")

	// Second run without --force refuses to overwrite.
	err = cmd.Run(&Global{}, &CLI{Config: cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cmd.Force = true
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))
}

func TestBuildCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()

	manifest := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`nodes:
  - id: ALPHA
    title: Alpha Module
    category: modules
    doc: |
      # Alpha

      Module body.
`), 0o640))

	output := filepath.Join(dir, "book")
	cfgPath := filepath.Join(dir, "epubpack.yaml")
	cfgYAML := "project: widget\nversion: 1.0.0\noutput: " + output + "\nnodes: " + manifest + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o640))

	cmd := &BuildCmd{}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))

	_, err := os.Stat(filepath.Join(output, "widget-v1.0.0.epub"))
	assert.NoError(t, err)
}
