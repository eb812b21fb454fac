package export

import (
	"errors"
	"fmt"
)

// ErrExportInProgress is returned when an export is requested while another
// export of the same session has not finished. Requests are never queued.
var ErrExportInProgress = errors.New("an export is already in progress")

// TimeoutError reports an export that did not finish within its deadline
type TimeoutError struct {
	Message string
	Cause   error
}

func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export timed out: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export timed out: %s", e.Message)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// FailureError reports an export that could not produce a valid document
type FailureError struct {
	Message string
	Cause   error
}

func (e *FailureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export failed: %s", e.Message)
}

func (e *FailureError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError reports a request for an output format other than PDF
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %q", e.Format)
}

// UnsupportedStrategyError reports a request for an unknown export strategy
type UnsupportedStrategyError struct {
	Strategy string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("unsupported export strategy: %q", e.Strategy)
}
