package epub

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/epubpack/internal/logfields"
)

// stageAssemble zips the staging tree into the final archive. Unreadable
// staged files are skipped with a warning unless strict assembly is
// configured, in which case the first unreadable member aborts the run.
func stageAssemble(_ context.Context, bs *buildState) error {
	cfg := bs.gen.config
	archivePath := cfg.ArchivePath()

	skipped, err := Assemble(bs.staging.Root(), archivePath, cfg.Build.StrictAssembly)
	bs.report.SkippedMembers = skipped
	for _, rel := range skipped {
		slog.Warn("Skipping unreadable staged member", logfields.Member(rel))
	}
	if err != nil {
		return newFatalStageError(StageAssemble, err)
	}

	bs.report.ArchivePath = archivePath
	slog.Debug("Archive written", logfields.Archive(archivePath))
	return nil
}
