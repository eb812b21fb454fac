// Package storage defines the persistence contract for saved documents and
// subscription records, and an in-memory implementation of it.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Collection names
const (
	CollectionResumes       = "resumes"
	CollectionCoverLetters  = "cover_letters"
	CollectionSubscriptions = "subscriptions"
)

// Collections lists every known collection
var Collections = []string{CollectionResumes, CollectionCoverLetters, CollectionSubscriptions}

// ValidCollection reports whether name is a known collection
func ValidCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// ErrNotFound is the cause of an Error for a missing record
var ErrNotFound = errors.New("record not found")

// Error reports a failed storage operation
type Error struct {
	Op         string
	Collection string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Cause)
	}
	return fmt.Sprintf("storage %s %s failed", e.Op, e.Collection)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Record is one stored row
type Record struct {
	ID         uuid.UUID       `json:"id"`
	UserID     string          `json:"user_id"`
	Collection string          `json:"collection"`
	Content    json.RawMessage `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Filter selects records of one user
type Filter struct {
	UserID string
	// Limit caps the number of records returned; zero means no limit
	Limit       int
	NewestFirst bool
}

// Store is the persistence service
type Store interface {
	// Insert stores a new record and returns it with its id and creation time set
	Insert(ctx context.Context, collection string, rec Record) (Record, error)
	// Select returns the records of a collection that match the filter
	Select(ctx context.Context, collection string, f Filter) ([]Record, error)
	// Delete removes a record owned by userID
	Delete(ctx context.Context, collection string, userID string, id uuid.UUID) error
}
