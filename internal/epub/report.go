package epub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the typed enumeration of final packaging result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures high-level metrics about a packaging run.
type BuildReport struct {
	SchemaVersion  int
	Project        string
	Version        string
	Start          time.Time
	End            time.Time
	Nodes          int
	Extras         int
	RenderedPages  int
	ArchivePath    string
	SkippedMembers []string // staged files skipped as unreadable during assembly
	StageDurations map[StageName]time.Duration
	Errors         []error // fatal errors causing run abortion (at most one today)
	Warnings       []error // non-fatal issues (e.g., verification findings)
	Outcome        BuildOutcome
}

func newBuildReport(project, version string, nodes, extras int) *BuildReport {
	return &BuildReport{
		SchemaVersion:  1,
		Project:        project,
		Version:        version,
		Start:          time.Now(),
		Nodes:          nodes,
		Extras:         extras,
		StageDurations: make(map[StageName]time.Duration),
	}
}

func (r *BuildReport) finish() {
	r.End = time.Now()
}

// deriveOutcome classifies the run from accumulated errors and warnings.
func (r *BuildReport) deriveOutcome() {
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
		for _, err := range r.Errors {
			var se *StageError
			if asStageError(err, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				break
			}
		}
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// reportSerializable is the JSON wire form of BuildReport (durations in ms,
// errors flattened to strings).
type reportSerializable struct {
	SchemaVersion    int                `json:"schema_version"`
	Project          string             `json:"project"`
	Version          string             `json:"version"`
	Start            time.Time          `json:"start"`
	End              time.Time          `json:"end"`
	Nodes            int                `json:"nodes"`
	Extras           int                `json:"extras"`
	RenderedPages    int                `json:"rendered_pages"`
	ArchivePath      string             `json:"archive_path,omitempty"`
	SkippedMembers   []string           `json:"skipped_members,omitempty"`
	StageDurationsMS map[string]float64 `json:"stage_durations_ms"`
	Errors           []string           `json:"errors,omitempty"`
	Warnings         []string           `json:"warnings,omitempty"`
	Outcome          BuildOutcome       `json:"outcome"`
}

func (r *BuildReport) serializable() reportSerializable {
	s := reportSerializable{
		SchemaVersion:    r.SchemaVersion,
		Project:          r.Project,
		Version:          r.Version,
		Start:            r.Start,
		End:              r.End,
		Nodes:            r.Nodes,
		Extras:           r.Extras,
		RenderedPages:    r.RenderedPages,
		ArchivePath:      r.ArchivePath,
		SkippedMembers:   r.SkippedMembers,
		StageDurationsMS: make(map[string]float64, len(r.StageDurations)),
		Outcome:          r.Outcome,
	}
	for name, d := range r.StageDurations {
		s.StageDurationsMS[string(name)] = float64(d.Microseconds()) / 1000.0
	}
	for _, e := range r.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	return s
}

// Persist writes the report as JSON into the given directory (best effort
// companion artifact next to the archive).
func (r *BuildReport) Persist(dir string) error {
	data, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	path := filepath.Join(dir, "epub-build-report.json")
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("persist build report: %w", err)
	}
	return nil
}
