package epub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingBeginCreatesShape(t *testing.T) {
	root := filepath.Join(t.TempDir(), "book")
	s := NewStaging(root)
	require.NoError(t, s.Begin())

	for _, dir := range []string{
		filepath.Join(root, "META-INF"),
		filepath.Join(root, "OEBPS", "modules"),
		filepath.Join(root, "OEBPS", "css"),
		filepath.Join(root, "OEBPS", "assets"),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestStagingBeginDestroysPriorContents(t *testing.T) {
	root := filepath.Join(t.TempDir(), "book")
	require.NoError(t, os.MkdirAll(root, 0o750))
	stale := filepath.Join(root, "stale.epub")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o640))

	s := NewStaging(root)
	require.NoError(t, s.Begin())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestStagingWriteMimetype(t *testing.T) {
	root := filepath.Join(t.TempDir(), "book")
	s := NewStaging(root)
	require.NoError(t, s.Begin())
	require.NoError(t, s.WriteMimetype())

	data, err := os.ReadFile(filepath.Join(root, "mimetype"))
	require.NoError(t, err)
	assert.Equal(t, "application/epub+zip", string(data))
}

func TestStagingPaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "book")
	s := NewStaging(root)

	assert.Equal(t, filepath.Join(root, "META-INF", "container.xml"), s.MetaInfPath("container.xml"))
	assert.Equal(t, filepath.Join(root, "OEBPS", "content.opf"), s.OEBPSPath("content.opf"))
	assert.Equal(t, filepath.Join(root, "OEBPS", "modules", "README.html"), s.ModulePath("README"))
}

func TestStagingCleanupLeavesArchive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "book")
	s := NewStaging(root)
	require.NoError(t, s.Begin())
	require.NoError(t, s.WriteMimetype())

	archive := filepath.Join(root, "proj-v1.0.0.epub")
	require.NoError(t, os.WriteFile(archive, []byte("zip"), 0o640))

	require.NoError(t, s.Cleanup())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "proj-v1.0.0.epub", entries[0].Name())
}
