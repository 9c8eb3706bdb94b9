package epub

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/epubpack/internal/config"
	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
	"git.home.luguber.info/inful/epubpack/internal/logfields"
	"git.home.luguber.info/inful/epubpack/internal/markdown"
)

// stageExtras fans one unit of work out per configured extra document and
// joins before returning. Units share no mutable state: each writes its own
// distinct path under OEBPS/modules/. Any unit failure fails the batch; the
// run does not proceed to assembly from a partially-written staging tree.
func stageExtras(_ context.Context, bs *buildState) error {
	cfg := bs.gen.config
	if len(cfg.Extras) == 0 {
		return nil
	}
	slog.Debug("Staging extra documents", logfields.Count(len(cfg.Extras)))

	err := runUnits(cfg.Extras, cfg.Build.PageConcurrency, func(path string) error {
		return stageOneExtra(bs, path)
	})
	if err != nil {
		return newFatalStageError(StageExtras, err)
	}
	return nil
}

func stageOneExtra(bs *buildState, path string) error {
	if strings.ToLower(filepath.Ext(path)) != ".md" {
		return pkgerrors.ConfigError(fmt.Sprintf("extra %q: only .md files are supported", path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "read extra "+path)
	}

	body, err := markdown.Render(raw)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryRender, pkgerrors.SeverityFatal, "render extra "+path)
	}

	cfg := bs.gen.config
	page, err := bs.gen.renderer.ExtraPage(cfg.ExtraTitle(path), body)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryRender, pkgerrors.SeverityFatal, "render extra page "+path)
	}
	page = bs.gen.autolinker.Expand(page, bs.gen.nodes)
	page = Sanitize(page)

	out := bs.staging.ModulePath(config.ExtraStem(path))
	if err := os.WriteFile(out, []byte(page), 0o640); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "write extra page "+out)
	}
	bs.pageRendered()
	return nil
}
