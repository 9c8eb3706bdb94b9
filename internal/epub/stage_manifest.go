package epub

import (
	"context"
	"os"

	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
)

// stageManifest fixes the package identifier and creation timestamp once,
// then renders the manifest, table of contents, navigation document and
// title page as single synchronous renders: each depends on the full
// combined page list and the shared identifier/timestamp.
func stageManifest(_ context.Context, bs *buildState) error {
	id, err := NewPackageID()
	if err != nil {
		return newFatalStageError(StageManifest, err)
	}
	bs.packageID = id
	bs.timestamp = Timestamp()

	cfg := bs.gen.config
	data := ManifestData{
		Identifier: id.URN(),
		Timestamp:  bs.timestamp,
		Project:    cfg.Project,
		Version:    cfg.Version,
		Language:   cfg.Language,
		Pages:      bs.gen.pageRefs(),
	}
	if cfg.Logo != "" {
		data.LogoFile = LogoFileName(cfg.Logo)
		data.LogoMediaType = LogoMediaType(data.LogoFile)
	}

	renders := []struct {
		path   string
		render func(ManifestData) (string, error)
	}{
		{bs.staging.OEBPSPath("content.opf"), bs.gen.renderer.Manifest},
		{bs.staging.OEBPSPath("toc.ncx"), bs.gen.renderer.TOC},
		{bs.staging.OEBPSPath("nav.html"), bs.gen.renderer.Nav},
		{bs.staging.OEBPSPath("title.html"), bs.gen.renderer.TitlePage},
	}
	for _, r := range renders {
		markup, err := r.render(data)
		if err != nil {
			return newFatalStageError(StageManifest,
				pkgerrors.Wrap(err, pkgerrors.CategoryRender, pkgerrors.SeverityFatal, "render "+r.path))
		}
		if err := os.WriteFile(r.path, []byte(Sanitize(markup)), 0o640); err != nil {
			return newFatalStageError(StageManifest,
				pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "write "+r.path))
		}
	}
	return nil
}
