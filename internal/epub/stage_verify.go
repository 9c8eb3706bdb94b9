package epub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
	"git.home.luguber.info/inful/epubpack/internal/logfields"
)

// stageVerify re-parses the staged pages and reports identifiers or
// fragments that escaped sanitization. Findings downgrade the run to a
// warning outcome but never block assembly.
func stageVerify(_ context.Context, bs *buildState) error {
	findings, err := VerifyStagedPages(bs.staging.Root())
	if err != nil {
		return newFatalStageError(StageVerify,
			pkgerrors.Wrap(err, pkgerrors.CategoryValidation, pkgerrors.SeverityFatal, "verify staged pages"))
	}
	if len(findings) == 0 {
		return nil
	}
	for _, f := range findings {
		slog.Warn("Staged page verification finding", logfields.File(f))
	}
	return newWarnStageError(StageVerify,
		fmt.Errorf("%d verification findings: %s", len(findings), strings.Join(findings, "; ")))
}
