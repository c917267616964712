package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// BuildArgs carries everything one build invocation needs. Constraint and
// format values are resolved by the caller (flags/config) before the build
// starts and are immutable for its duration.
type BuildArgs struct {
	Root    m.Path
	Out     m.Path
	Layout  m.LayoutMode
	Profile m.ConstraintProfile
	Format  m.CartFormat
	Workers int
	// DryRun stops after validation without writing the artifact. Used by
	// the info command.
	DryRun bool
}

// Orchestrator sequences scan, assembly, validation and serialization for a
// single build and aggregates every diagnostic into one report.
type Orchestrator interface {
	Build(ctx context.Context, args BuildArgs) m.BuildReport
}

type orchestrator struct {
	scanner    Scanner
	assembler  Assembler
	validator  Validator
	serializer Serializer
	sink       EventSink
}

// NewOrchestrator wires the four pipeline steps together. Diagnostics flow
// to sink as they happen and into the final report.
func NewOrchestrator(fs adapter.ProjectFSAdapter, recursive bool, sink EventSink) Orchestrator {
	if sink == nil {
		sink = NopSink{}
	}

	return &orchestrator{
		scanner:    NewScanner(fs, recursive, sink),
		assembler:  NewAssembler(fs),
		validator:  NewValidator(sink),
		serializer: NewSerializer(fs),
		sink:       sink,
	}
}

// Build runs the pipeline: Scanning -> Assembling -> Validating ->
// Serializing -> Done. Any step can move to Failed; the report then carries
// every diagnostic collected up to and including that step and no artifact
// path. Tab units live only for the duration of the call.
func (o *orchestrator) Build(ctx context.Context, args BuildArgs) m.BuildReport {
	report := m.BuildReport{
		Status:    m.StatusFailed,
		Root:      args.Root,
		StartedAt: time.Now(),
	}
	defer func() {
		report.FinishedAt = time.Now()
	}()

	// Scanning
	report.Stage = m.StageScan

	tabs, warnings, err := o.scanner.Scan(ctx, args.Root, args.Layout)
	report.Diagnostics = append(report.Diagnostics, warnings...)

	if err != nil {
		return o.fail(&report, m.StageScan, m.CodeScanError, err)
	}

	report.TabCount = len(tabs)

	// Assembling
	report.Stage = m.StageAssemble

	if err := o.assembler.AssembleAll(ctx, tabs, args.Workers); err != nil {
		code := m.CodeEncodingError

		var encErr *EncodingError
		if !errors.As(err, &encErr) {
			code = m.CodeIOError
		}

		return o.fail(&report, m.StageAssemble, code, err)
	}

	// Validating
	report.Stage = m.StageValidate

	violations := o.validator.Validate(tabs, args.Profile)
	report.Diagnostics = append(report.Diagnostics, violations...)

	if len(violations) > 0 {
		slog.Error("validation failed", "root", args.Root, "violations", len(violations))
		return report
	}

	if args.DryRun {
		report.Stage = m.StageDone
		report.Status = m.StatusSuccess

		return report
	}

	// Serializing. Cancellation is honored here one last time so an aborted
	// build never leaves a cart behind.
	report.Stage = m.StageSerialize

	if err := ctx.Err(); err != nil {
		return o.fail(&report, m.StageSerialize, m.CodeIOError, err)
	}

	cart := o.serializer.Render(tabs, args.Format)

	if err := o.serializer.Write(args.Out, cart); err != nil {
		return o.fail(&report, m.StageSerialize, m.CodeIOError, err)
	}

	report.Stage = m.StageDone
	report.Status = m.StatusSuccess
	report.ArtifactPath = args.Out

	slog.Info("build succeeded", "root", args.Root, "artifact", args.Out, "tabs", len(tabs))

	return report
}

func (o *orchestrator) fail(report *m.BuildReport, stage m.Stage, code m.DiagCode, err error) m.BuildReport {
	diag := m.Diagnostic{
		Severity: m.SeverityError,
		Stage:    stage,
		Code:     code,
		Message:  err.Error(),
	}

	var encErr *EncodingError
	if errors.As(err, &encErr) {
		diag.Tab = encErr.Tab
		diag.File = encErr.File
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		diag.File = ioErr.Path
	}

	o.sink.Emit(diag)
	report.Diagnostics = append(report.Diagnostics, diag)

	slog.Error("build failed", "stage", stage, "error", err)

	return *report
}
