package adapter

import (
	"fmt"

	"gopkg.in/yaml.v3"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// ReportStore persists build reports so they can be inspected after the run.
type ReportStore interface {
	Save(path m.Path, report m.BuildReport) error
	Load(path m.Path) (m.BuildReport, error)
}

type yamlReportStore struct {
	fs ProjectFSAdapter
}

// NewReportStore constructs a ReportStore that serializes reports as YAML.
func NewReportStore(fs ProjectFSAdapter) ReportStore {
	return &yamlReportStore{fs: fs}
}

// Save writes the report to path, replacing any previous report atomically.
func (s *yamlReportStore) Save(path m.Path, report m.BuildReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}

	if err := s.fs.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}

	return nil
}

// Load reads a previously saved report from path.
func (s *yamlReportStore) Load(path m.Path) (m.BuildReport, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return m.BuildReport{}, fmt.Errorf("read build report: %w", err)
	}

	var report m.BuildReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.BuildReport{}, fmt.Errorf("unmarshal build report: %w", err)
	}

	return report, nil
}
