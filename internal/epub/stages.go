package epub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/epubpack/internal/logfields"
	"git.home.luguber.info/inful/epubpack/internal/metrics"
)

// StageName identifies a discrete unit of work in the packaging run.
type StageName string

const (
	StagePrepare  StageName = "prepare"
	StageAssets   StageName = "assets"
	StageMimetype StageName = "mimetype"
	StageExtras   StageName = "extras"
	StageManifest StageName = "manifest"
	StagePages    StageName = "pages"
	StageVerify   StageName = "verify"
	StageAssemble StageName = "assemble"
	StageCleanup  StageName = "cleanup"
)

// Stage is a discrete unit of work in the packaging run.
type Stage func(ctx context.Context, bs *buildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

func asStageError(err error, target **StageError) bool { return errors.As(err, target) }

// buildState carries mutable state across stages.
type buildState struct {
	gen     *Generator
	staging *Staging
	report  *BuildReport

	// Fixed once by the manifest stage and threaded into every consumer;
	// never regenerated per render.
	packageID PackageID
	timestamp string

	// rendered counts staged pages; page units within a batch run
	// concurrently, so the counter is atomic.
	rendered atomic.Int64
}

func (bs *buildState) pageRendered() { bs.rendered.Add(1) }

// stageEntry pairs a stage with its name for ordered execution.
type stageEntry struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning-kind stage errors are recorded and the run
// continues; cancellation between stages stops the run. In-flight batch
// units are never interrupted mid-stage.
func runStages(ctx context.Context, bs *buildState, stages []stageEntry) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.report.Errors = append(bs.report.Errors, se)
			bs.gen.recorder.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.report.StageDurations[st.name] = dur
		bs.gen.recorder.ObserveStageDuration(string(st.name), dur)
		slog.Debug("Stage finished", logfields.Stage(string(st.name)), logfields.DurationMS(float64(dur.Microseconds())/1000.0), logfields.Error(err))

		if err == nil {
			bs.gen.recorder.IncStageResult(string(st.name), metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !asStageError(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			bs.report.Warnings = append(bs.report.Warnings, se)
			bs.gen.recorder.IncStageResult(string(st.name), metrics.ResultWarning)
			continue
		case StageErrorCanceled:
			bs.report.Errors = append(bs.report.Errors, se)
			bs.gen.recorder.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
			bs.report.Errors = append(bs.report.Errors, se)
			bs.gen.recorder.IncStageResult(string(st.name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}
