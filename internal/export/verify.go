package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Verify parses a produced PDF and returns its page count. Anything that does
// not parse, or parses to zero pages, is a *FailureError.
func Verify(data []byte) (pages int, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, &FailureError{Message: fmt.Sprintf("output is not a pdf (len=%d)", len(data))}
	}

	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = &FailureError{Message: fmt.Sprintf("malformed pdf: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, &FailureError{Message: "failed to parse pdf", Cause: err}
	}
	pages = reader.NumPage()
	if pages < 1 {
		return 0, &FailureError{Message: "pdf has no pages"}
	}
	return pages, nil
}

// PlainText extracts the text content of a PDF
func PlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FailureError{Message: fmt.Sprintf("malformed pdf: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &FailureError{Message: "failed to parse pdf", Cause: err}
	}
	r, err := reader.GetPlainText()
	if err != nil {
		return "", &FailureError{Message: "failed to extract text", Cause: err}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &FailureError{Message: "failed to read text", Cause: err}
	}
	return string(b), nil
}
