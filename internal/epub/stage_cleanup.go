package epub

import (
	"context"

	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
)

// stageCleanup removes the staged subtrees after a successful assembly,
// leaving only the archive (and report) in the output directory. It only
// runs on the success path; any earlier failure leaves staging intact.
func stageCleanup(_ context.Context, bs *buildState) error {
	if err := bs.staging.Cleanup(); err != nil {
		return newFatalStageError(StageCleanup,
			pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityFatal, "cleanup staging"))
	}
	return nil
}
