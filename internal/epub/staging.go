package epub

import (
	"fmt"
	"os"
	"path/filepath"
)

// mimetypePayload is the literal content of the mimetype member. It must be
// the first member of the archive and stored without compression.
const mimetypePayload = "application/epub+zip"

// Fixed staging layout names.
const (
	metaInfDir   = "META-INF"
	oebpsDir     = "OEBPS"
	modulesDir   = "modules"
	cssDir       = "css"
	assetsDir    = "assets"
	mimetypeName = "mimetype"
)

// Staging manages the ephemeral filesystem tree assembled before zipping.
// It is created fresh at run start (prior contents at the target path are
// destroyed) and its subtrees are removed after successful packaging,
// leaving only the produced archive.
type Staging struct {
	root string
}

// NewStaging creates a staging manager rooted at the output directory.
func NewStaging(root string) *Staging {
	return &Staging{root: filepath.Clean(root)}
}

// Root returns the staging root directory.
func (s *Staging) Root() string { return s.root }

// Begin destroys any prior contents at the root and recreates the fixed
// staging shape: META-INF plus OEBPS with modules, css and assets subtrees.
func (s *Staging) Begin() error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("reset staging root: %w", err)
	}
	for _, dir := range []string{
		filepath.Join(s.root, metaInfDir),
		filepath.Join(s.root, oebpsDir, modulesDir),
		filepath.Join(s.root, oebpsDir, cssDir),
		filepath.Join(s.root, oebpsDir, assetsDir),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create staging directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteMimetype writes the literal mimetype payload at the staging root.
func (s *Staging) WriteMimetype() error {
	return os.WriteFile(filepath.Join(s.root, mimetypeName), []byte(mimetypePayload), 0o640)
}

// MetaInfPath returns the absolute path for a META-INF member.
func (s *Staging) MetaInfPath(name string) string {
	return filepath.Join(s.root, metaInfDir, name)
}

// OEBPSPath returns the absolute path for a member below OEBPS.
func (s *Staging) OEBPSPath(rel ...string) string {
	return filepath.Join(append([]string{s.root, oebpsDir}, rel...)...)
}

// ModulePath returns the output path for a page with the given filename stem.
func (s *Staging) ModulePath(stem string) string {
	return s.OEBPSPath(modulesDir, stem+".html")
}

// Cleanup removes the staged subtrees (mimetype, META-INF, OEBPS), leaving
// only the produced archive in the root. Called on the success path only.
func (s *Staging) Cleanup() error {
	for _, name := range []string{mimetypeName, metaInfDir, oebpsDir} {
		if err := os.RemoveAll(filepath.Join(s.root, name)); err != nil {
			return fmt.Errorf("cleanup staging %s: %w", name, err)
		}
	}
	return nil
}
