package domain

import (
	"fmt"

	m "picobuild.dev/pkg/picobuild/internal/model"
)

// ScanError reports a structural problem discovering tabs. It is fatal and
// aborts the build before any assembly happens.
type ScanError struct {
	Root   m.Path
	Reason string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %s", e.Root, e.Reason)
}

// EncodingError reports a fragment whose content is not valid text. It is
// fatal: an unreadable fragment means the input is unusable, not a condition
// to report and continue past.
type EncodingError struct {
	Tab  string
	File m.Path
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("tab %q: file %s is not valid UTF-8", e.Tab, e.File)
}

// TooManyTabsError reports that the project contains more tabs than the
// constraint profile allows.
type TooManyTabsError struct {
	Found int
	Limit int
}

func (e *TooManyTabsError) Error() string {
	return fmt.Sprintf("project has %d tabs, the runtime allows at most %d", e.Found, e.Limit)
}

// TabTooLargeError reports a single tab whose assembled content exceeds the
// per-tab size limit. Validation emits one per offending tab.
type TabTooLargeError struct {
	Tab   string
	Size  int
	Limit int
}

func (e *TabTooLargeError) Error() string {
	return fmt.Sprintf("tab %q is %d bytes, %d over the %d byte limit",
		e.Tab, e.Size, e.Size-e.Limit, e.Limit)
}

// IOError reports a failure writing the artifact.
type IOError struct {
	Path m.Path
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
