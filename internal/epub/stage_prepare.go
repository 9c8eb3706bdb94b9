package epub

import (
	"context"

	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
)

// stagePrepare destroys any prior output and recreates the staging shape.
func stagePrepare(_ context.Context, bs *buildState) error {
	if err := bs.staging.Begin(); err != nil {
		return newFatalStageError(StagePrepare,
			pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "prepare staging directory"))
	}
	return nil
}

// stageAssets provisions static assets (stylesheet, container descriptor,
// optional logo) into the staging tree.
func stageAssets(_ context.Context, bs *buildState) error {
	if err := bs.gen.assets.Provision(bs.staging, bs.gen.config); err != nil {
		return newFatalStageError(StageAssets,
			pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "provision assets"))
	}
	return nil
}

// stageMimetype writes the literal mimetype payload at the staging root.
func stageMimetype(_ context.Context, bs *buildState) error {
	if err := bs.staging.WriteMimetype(); err != nil {
		return newFatalStageError(StageMimetype,
			pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "write mimetype"))
	}
	return nil
}
