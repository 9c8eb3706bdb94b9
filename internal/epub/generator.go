package epub

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/epubpack/internal/config"
	"git.home.luguber.info/inful/epubpack/internal/docmodel"
	"git.home.luguber.info/inful/epubpack/internal/logfields"
	"git.home.luguber.info/inful/epubpack/internal/metrics"
)

// Generator runs the packaging pipeline for one configuration and node set.
type Generator struct {
	config     *config.Config
	nodes      []docmodel.Node
	renderer   TemplateRenderer
	autolinker Autolinker
	assets     AssetProvisioner
	recorder   metrics.Recorder
}

// NewGenerator creates a generator with the default renderer, autolinker and
// asset provisioner. Collaborators are replaceable via the Set* methods.
func NewGenerator(cfg *config.Config, nodes []docmodel.Node) *Generator {
	return &Generator{
		config:     cfg,
		nodes:      nodes,
		renderer:   NewDefaultRenderer(cfg),
		autolinker: CodeAutolinker{},
		assets:     DefaultAssets{},
		recorder:   metrics.NoopRecorder{},
	}
}

// Config exposes the underlying configuration (read-only usage by callers).
func (g *Generator) Config() *config.Config { return g.config }

// SetRecorder injects a metrics recorder (optional). Returns the generator for chaining.
func (g *Generator) SetRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		g.recorder = metrics.NoopRecorder{}
		return g
	}
	g.recorder = r
	return g
}

// SetRenderer replaces the template renderer. Returns the generator for chaining.
func (g *Generator) SetRenderer(r TemplateRenderer) *Generator {
	if r != nil {
		g.renderer = r
	}
	return g
}

// SetAutolinker replaces the autolinker. Returns the generator for chaining.
func (g *Generator) SetAutolinker(a Autolinker) *Generator {
	if a != nil {
		g.autolinker = a
	}
	return g
}

// SetAssetProvisioner replaces the asset provisioner. Returns the generator for chaining.
func (g *Generator) SetAssetProvisioner(a AssetProvisioner) *Generator {
	if a != nil {
		g.assets = a
	}
	return g
}

// Package runs the full pipeline and returns the produced archive path.
func (g *Generator) Package(ctx context.Context) (string, error) {
	report, err := g.PackageWithReport(ctx)
	if err != nil {
		return "", err
	}
	return report.ArchivePath, nil
}

// PackageWithReport runs the full pipeline honoring the provided context for
// cancellation between stages, and returns a report with per-stage metrics.
// On failure the staging directory is left in place for diagnosis.
func (g *Generator) PackageWithReport(ctx context.Context) (*BuildReport, error) {
	slog.Info("Starting EPUB packaging",
		logfields.Project(g.config.Project),
		logfields.Version(g.config.Version),
		logfields.Path(g.config.Output),
		logfields.Count(len(g.nodes)))

	report := newBuildReport(g.config.Project, g.config.Version, len(g.nodes), len(g.config.Extras))
	bs := &buildState{
		gen:     g,
		staging: NewStaging(g.config.Output),
		report:  report,
	}

	stages := []stageEntry{
		{StagePrepare, stagePrepare},
		{StageAssets, stageAssets},
		{StageMimetype, stageMimetype},
		{StageExtras, stageExtras},
		{StageManifest, stageManifest},
		{StagePages, stagePages},
		{StageVerify, stageVerify},
		{StageAssemble, stageAssemble},
		{StageCleanup, stageCleanup},
	}

	err := runStages(ctx, bs, stages)
	report.RenderedPages = int(bs.rendered.Load())
	report.deriveOutcome()
	report.finish()

	g.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	g.recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	g.recorder.AddPagesRendered(report.RenderedPages)

	if err != nil {
		slog.Error("EPUB packaging failed; staging left in place for diagnosis",
			logfields.Path(bs.staging.Root()), logfields.Error(err))
		return report, err
	}

	// Persist report (best effort) next to the archive.
	if perr := report.Persist(g.config.Output); perr != nil {
		slog.Warn("Failed to persist build report", logfields.Error(perr))
	}

	slog.Info("EPUB packaging completed",
		logfields.Archive(report.ArchivePath),
		logfields.Count(report.RenderedPages))
	return report, nil
}

// pageRefs builds the manifest/navigation page list in spine order: extras
// first, then modules, exceptions and protocols.
func (g *Generator) pageRefs() []PageRef {
	refs := make([]PageRef, 0, len(g.config.Extras)+len(g.nodes))
	for _, extra := range g.config.Extras {
		stem := config.ExtraStem(extra)
		refs = append(refs, PageRef{
			Stem:   stem,
			Title:  g.config.ExtraTitle(extra),
			ItemID: pageItemID(stem),
		})
	}
	for _, cat := range docmodel.Categories {
		for _, n := range docmodel.ByCategory(g.nodes, cat) {
			refs = append(refs, PageRef{
				Stem:   n.ID,
				Title:  n.DisplayTitle(),
				ItemID: pageItemID(n.ID),
			})
		}
	}
	return refs
}

// pageItemID derives a manifest item id from a filename stem. The prefix
// keeps the id a valid XML name even when the stem starts with a digit.
func pageItemID(stem string) string {
	return "page-" + SanitizeID(stem)
}
