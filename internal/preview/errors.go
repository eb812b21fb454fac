package preview

import "fmt"

// RenderError reports a failure to produce preview markup
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("preview render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("preview render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
