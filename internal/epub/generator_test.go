package epub

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/epubpack/internal/config"
	"git.home.luguber.info/inful/epubpack/internal/docmodel"
)

func testNodes() []docmodel.Node {
	return []docmodel.Node{
		{ID: "ALPHA", Title: "Alpha Module", Category: docmodel.CategoryModule,
			Doc: "# Alpha\n\nUses `BETA` under the hood.\n"},
		{ID: "BETA", Title: "Beta Exception", Category: docmodel.CategoryException,
			Doc: "Raised when alpha fails.\n"},
		{ID: "GAMMA", Title: "Gamma Protocol", Category: docmodel.CategoryProtocol,
			Doc: "Wire protocol notes.\n"},
	}
}

func testConfig(t *testing.T, extras ...string) *config.Config {
	t.Helper()
	return &config.Config{
		Project:  "widget",
		Version:  "1.2.3",
		Output:   filepath.Join(t.TempDir(), "book"),
		Language: "en",
		Extras:   extras,
	}
}

func readZipMember(t *testing.T, zr *zip.ReadCloser, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			return string(data)
		}
	}
	t.Fatalf("archive member %s not found", name)
	return ""
}

func TestGeneratorPackageEndToEnd(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "readme.md")
	require.NoError(t, os.WriteFile(extra, []byte("# About\n\nIntro text.\n"), 0o640))

	cfg := testConfig(t, extra)
	gen := NewGenerator(cfg, testNodes())

	report, err := gen.PackageWithReport(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 4, report.RenderedPages)
	assert.Equal(t, filepath.Join(cfg.Output, "widget-v1.2.3.epub"), report.ArchivePath)
	assert.Empty(t, report.SkippedMembers)

	zr, err := zip.OpenReader(report.ArchivePath)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()

	require.NotEmpty(t, zr.File)
	assert.Equal(t, "mimetype", zr.File[0].Name)
	assert.Equal(t, zip.Store, zr.File[0].Method)
	assert.Equal(t, "application/epub+zip", readZipMember(t, zr, "mimetype"))

	for _, want := range []string{
		"META-INF/container.xml",
		"OEBPS/content.opf",
		"OEBPS/toc.ncx",
		"OEBPS/nav.html",
		"OEBPS/title.html",
		"OEBPS/css/epub.css",
		"OEBPS/modules/README.html",
		"OEBPS/modules/ALPHA.html",
		"OEBPS/modules/BETA.html",
		"OEBPS/modules/GAMMA.html",
	} {
		readZipMember(t, zr, want)
	}

	opf := readZipMember(t, zr, "OEBPS/content.opf")
	assert.Regexp(t, `urn:uuid:[0-9a-f-]{36}`, opf)
	assert.Regexp(t, `<meta property="dcterms:modified">\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z</meta>`, opf)

	// Spine order: extras first, then modules, exceptions, protocols.
	spine := opf[strings.Index(opf, "<spine"):]
	readmePos := strings.Index(spine, "page-README")
	alphaPos := strings.Index(spine, "page-ALPHA")
	betaPos := strings.Index(spine, "page-BETA")
	gammaPos := strings.Index(spine, "page-GAMMA")
	require.True(t, readmePos >= 0 && alphaPos >= 0 && betaPos >= 0 && gammaPos >= 0)
	assert.True(t, readmePos < alphaPos && alphaPos < betaPos && betaPos < gammaPos)

	// Inline code references to known nodes became links.
	alpha := readZipMember(t, zr, "OEBPS/modules/ALPHA.html")
	assert.Contains(t, alpha, `<a href="BETA.html">`)
	assert.Contains(t, alpha, `id="ALPHA"`)

	// Staging was cleaned up: only the archive and the report remain.
	entries, err := os.ReadDir(cfg.Output)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"widget-v1.2.3.epub", "epub-build-report.json"}, names)
}

func TestGeneratorRejectsNonMarkdownExtra(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(extra, []byte("plain text"), 0o640))

	cfg := testConfig(t, extra)
	gen := NewGenerator(cfg, testNodes())

	report, err := gen.PackageWithReport(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only .md files are supported")
	assert.Equal(t, OutcomeFailed, report.Outcome)

	// Staging is left in place for diagnosis; no archive was produced.
	_, statErr := os.Stat(filepath.Join(cfg.Output, "mimetype"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(cfg.ArchivePath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestGeneratorCanceledContext(t *testing.T) {
	cfg := testConfig(t)
	gen := NewGenerator(cfg, testNodes())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := gen.PackageWithReport(ctx)
	require.Error(t, err)
	assert.Equal(t, OutcomeCanceled, report.Outcome)

	var se *StageError
	require.True(t, asStageError(err, &se))
	assert.Equal(t, StageErrorCanceled, se.Kind)
}

func TestGeneratorRunsDifferOnlyInIdentity(t *testing.T) {
	runOnce := func() (opf, alpha, nav string) {
		cfg := testConfig(t)
		gen := NewGenerator(cfg, testNodes())
		report, err := gen.PackageWithReport(context.Background())
		require.NoError(t, err)

		zr, err := zip.OpenReader(report.ArchivePath)
		require.NoError(t, err)
		defer func() { _ = zr.Close() }()
		return readZipMember(t, zr, "OEBPS/content.opf"),
			readZipMember(t, zr, "OEBPS/modules/ALPHA.html"),
			readZipMember(t, zr, "OEBPS/nav.html")
	}

	opf1, alpha1, nav1 := runOnce()
	opf2, alpha2, nav2 := runOnce()

	// Pages and nav carry no identifier or timestamp and reproduce exactly.
	assert.Equal(t, alpha1, alpha2)
	assert.Equal(t, nav1, nav2)

	// The manifest differs only in the embedded identifier and timestamp.
	idOf := func(opf string) string {
		start := strings.Index(opf, "urn:uuid:")
		require.True(t, start >= 0)
		return opf[start : start+len("urn:uuid:")+36]
	}
	assert.NotEqual(t, idOf(opf1), idOf(opf2))

	neutralize := func(opf string) string {
		out := strings.ReplaceAll(opf, idOf(opf), "ID")
		return regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`).ReplaceAllString(out, "TS")
	}
	assert.Equal(t, neutralize(opf1), neutralize(opf2))
}

func TestGeneratorPackageReturnsArchivePath(t *testing.T) {
	cfg := testConfig(t)
	gen := NewGenerator(cfg, testNodes())

	path, err := gen.Package(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.ArchivePath(), path)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
