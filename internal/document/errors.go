// Package document implements the editing operations of the document model.
package document

import "fmt"

// ValidationError reports an edit that was rejected because a field value or
// the document shape is invalid. The document is left unchanged.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// SectionNotFoundError reports an edit addressed to a section id that does not exist
type SectionNotFoundError struct {
	ID string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section not found: %s", e.ID)
}
