package model

import "time"

// BuildStatus is the overall outcome of a build attempt.
type BuildStatus string

const (
	// StatusSuccess means the cart was written.
	StatusSuccess BuildStatus = "success"
	// StatusFailed means the build stopped and no artifact was produced.
	StatusFailed BuildStatus = "failed"
)

// Stage identifies a step of the build pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageScan      Stage = "scan"
	StageAssemble  Stage = "assemble"
	StageValidate  Stage = "validate"
	StageSerialize Stage = "serialize"
	StageDone      Stage = "done"
)

// Severity classifies a diagnostic.
type Severity string

const (
	// SeverityWarning marks non-fatal conditions; the pipeline continues.
	SeverityWarning Severity = "warning"
	// SeverityError marks fatal conditions; the build fails.
	SeverityError Severity = "error"
)

// DiagCode is a stable machine-readable identifier for a diagnostic kind.
type DiagCode string

// Diagnostic codes emitted by the pipeline.
const (
	CodeScanError     DiagCode = "scan-error"
	CodeLooseFile     DiagCode = "loose-file"
	CodeEmptyTab      DiagCode = "empty-tab"
	CodeBinaryFile    DiagCode = "binary-file"
	CodeEncodingError DiagCode = "encoding-error"
	CodeTooManyTabs   DiagCode = "too-many-tabs"
	CodeTabTooLarge   DiagCode = "tab-too-large"
	CodeIOError       DiagCode = "io-error"
)

// Diagnostic is one structured event produced during a build. Warnings are
// accumulated; errors stop the pipeline at the stage that produced them.
type Diagnostic struct {
	Severity Severity `yaml:"severity"`
	Stage    Stage    `yaml:"stage"`
	Code     DiagCode `yaml:"code"`
	Tab      string   `yaml:"tab,omitempty"`
	File     Path     `yaml:"file,omitempty"`
	Message  string   `yaml:"message"`
}

// BuildReport is the result of one build attempt.
type BuildReport struct {
	Status       BuildStatus  `yaml:"status"`
	Stage        Stage        `yaml:"stage"`
	Root         Path         `yaml:"root"`
	ArtifactPath Path         `yaml:"artifact,omitempty"`
	TabCount     int          `yaml:"tabs"`
	Diagnostics  []Diagnostic `yaml:"diagnostics,omitempty"`
	StartedAt    time.Time    `yaml:"started_at"`
	FinishedAt   time.Time    `yaml:"finished_at"`
}

// Failed reports whether the build stopped without producing an artifact.
func (r BuildReport) Failed() bool {
	return r.Status == StatusFailed
}

// Errors returns the fatal diagnostics of the report.
func (r BuildReport) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

// Warnings returns the non-fatal diagnostics of the report.
func (r BuildReport) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

func (r BuildReport) filter(severity Severity) []Diagnostic {
	var out []Diagnostic

	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			out = append(out, d)
		}
	}

	return out
}
