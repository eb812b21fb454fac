package document

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-studio/internal/schemas"
	"github.com/jonathan/resume-studio/internal/types"
)

// Marshal serializes a document snapshot for storage
func Marshal(doc *types.Document) ([]byte, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// Unmarshal restores a document from a snapshot produced by Marshal.
// The snapshot is checked against the document schema before decoding.
func Unmarshal(data []byte) (*types.Document, error) {
	if err := schemas.ValidateDocument(data); err != nil {
		return nil, &ValidationError{Field: "document", Message: "snapshot does not match document schema", Cause: err}
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Field: "document", Message: "failed to decode snapshot", Cause: err}
	}
	if doc.Resume != nil && doc.Resume.Sections == nil {
		doc.Resume.Sections = []types.Section{}
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
