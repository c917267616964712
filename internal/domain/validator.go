package domain

import (
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// Validator checks the assembled tab set against a constraint profile.
type Validator interface {
	// Validate returns one diagnostic per violation; an empty slice means
	// the set is valid. Every tab is evaluated against every rule before
	// returning, so callers get the complete picture in one pass.
	Validate(tabs []m.TabUnit, profile m.ConstraintProfile) []m.Diagnostic
}

type validator struct {
	sink EventSink
}

// NewValidator constructs a Validator emitting violations to sink.
func NewValidator(sink EventSink) Validator {
	if sink == nil {
		sink = NopSink{}
	}

	return &validator{sink: sink}
}

func (v *validator) Validate(tabs []m.TabUnit, profile m.ConstraintProfile) []m.Diagnostic {
	var violations []m.Diagnostic

	if profile.MaxTabs > 0 && len(tabs) > profile.MaxTabs {
		violations = v.violation(violations, m.Diagnostic{
			Severity: m.SeverityError,
			Stage:    m.StageValidate,
			Code:     m.CodeTooManyTabs,
			Message:  (&TooManyTabsError{Found: len(tabs), Limit: profile.MaxTabs}).Error(),
		})
	}

	if profile.MaxTabBytes > 0 {
		for _, tab := range tabs {
			if len(tab.Text) <= profile.MaxTabBytes {
				continue
			}

			violations = v.violation(violations, m.Diagnostic{
				Severity: m.SeverityError,
				Stage:    m.StageValidate,
				Code:     m.CodeTabTooLarge,
				Tab:      tab.Name,
				Message: (&TabTooLargeError{
					Tab:   tab.Name,
					Size:  len(tab.Text),
					Limit: profile.MaxTabBytes,
				}).Error(),
			})
		}
	}

	return violations
}

func (v *validator) violation(violations []m.Diagnostic, diag m.Diagnostic) []m.Diagnostic {
	v.sink.Emit(diag)
	return append(violations, diag)
}
