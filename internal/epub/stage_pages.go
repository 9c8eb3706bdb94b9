package epub

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/epubpack/internal/docmodel"
	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
	"git.home.luguber.info/inful/epubpack/internal/logfields"
)

// stagePages stages node pages in three sequential batches, one per category
// in spine order. Units inside a batch run concurrently; the next batch does
// not start until the previous one has fully joined.
func stagePages(_ context.Context, bs *buildState) error {
	for _, cat := range docmodel.Categories {
		nodes := docmodel.ByCategory(bs.gen.nodes, cat)
		if len(nodes) == 0 {
			continue
		}
		slog.Debug("Staging node pages", logfields.Category(string(cat)), logfields.Count(len(nodes)))

		err := runUnits(nodes, bs.gen.config.Build.PageConcurrency, func(n docmodel.Node) error {
			return stageOneNode(bs, n)
		})
		if err != nil {
			return newFatalStageError(StagePages, err)
		}
	}
	return nil
}

func stageOneNode(bs *buildState, node docmodel.Node) error {
	page, err := bs.gen.renderer.NodePage(node, bs.gen.nodes)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryRender, pkgerrors.SeverityFatal, "render node page "+node.ID)
	}
	page = bs.gen.autolinker.Expand(page, bs.gen.nodes)
	page = Sanitize(page)

	out := bs.staging.ModulePath(node.ID)
	if err := os.WriteFile(out, []byte(page), 0o640); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "write node page "+out)
	}
	bs.pageRendered()
	return nil
}
