package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-studio/internal/auth"
	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/storage"
	"github.com/jonathan/resume-studio/internal/subscription"
	"github.com/jonathan/resume-studio/internal/types"
)

// errNoStore is the cause of storage errors in sessions without a store
var errNoStore = errors.New("storage is not configured")

// Saved is the stored form of a document
type Saved struct {
	TemplateID string          `json:"template_id"`
	Document   json.RawMessage `json:"document"`
}

// Encode serializes a document and its template for storage
func Encode(doc *types.Document, templateID string) (json.RawMessage, error) {
	data, err := document.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Saved{TemplateID: templateID, Document: data})
}

// Decode restores a stored document and its template id
func Decode(content json.RawMessage) (*types.Document, string, error) {
	var saved Saved
	if err := json.Unmarshal(content, &saved); err != nil {
		return nil, "", &document.ValidationError{Field: "content", Message: "malformed saved document", Cause: err}
	}
	doc, err := document.Unmarshal(saved.Document)
	if err != nil {
		return nil, "", err
	}
	return doc, saved.TemplateID, nil
}

func (s *Session) store() (storage.Store, string, error) {
	s.mu.Lock()
	kind := s.doc.Kind
	s.mu.Unlock()

	collection := subscription.Collection(kind)
	if s.opts.Store == nil {
		return nil, collection, &storage.Error{Op: "open", Collection: collection, Cause: errNoStore}
	}
	return s.opts.Store, collection, nil
}

func (s *Session) predicate(kind types.DocumentKind) subscription.Predicate {
	if s.opts.CanCreate != nil {
		return s.opts.CanCreate
	}
	return s.opts.Quotas.PredicateFor(kind)
}

// Persist saves a snapshot of the document for the signed-in user. The user's
// existing document count and plan are read concurrently and checked against
// the quota before anything is written. Failures never touch the in-memory
// document.
func (s *Session) Persist(ctx context.Context) (storage.Record, error) {
	id := auth.FromContext(ctx)
	if err := id.Require(); err != nil {
		return storage.Record{}, err
	}
	store, collection, err := s.store()
	if err != nil {
		return storage.Record{}, err
	}

	s.mu.Lock()
	snapshot, templateID := s.doc.Clone(), s.templateID
	s.mu.Unlock()

	if err := document.Validate(snapshot); err != nil {
		return storage.Record{}, err
	}

	var (
		existing int
		tier     subscription.Tier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := store.Select(gctx, collection, storage.Filter{UserID: id.UserID})
		existing = len(recs)
		return err
	})
	g.Go(func() error {
		var err error
		tier, err = subscription.LookupTier(gctx, store, id.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[session] %s persist lookup failed: %v", s.id, err)
		return storage.Record{}, err
	}

	if !s.predicate(snapshot.Kind)(existing, tier) {
		return storage.Record{}, &subscription.QuotaExceededError{
			Kind:     snapshot.Kind,
			Tier:     tier,
			Existing: existing,
			Limit:    s.opts.Quotas.Limit(snapshot.Kind, tier),
		}
	}

	content, err := Encode(snapshot, templateID)
	if err != nil {
		return storage.Record{}, err
	}
	rec, err := store.Insert(ctx, collection, storage.Record{UserID: id.UserID, Content: content})
	if err != nil {
		log.Printf("[session] %s persist failed: %v", s.id, err)
		return storage.Record{}, err
	}

	s.mu.Lock()
	if s.saved != nil {
		s.saved = append(s.saved, rec)
	}
	s.mu.Unlock()

	log.Printf("[session] %s saved %s %s (%s plan, %d existing)", s.id, snapshot.Kind, rec.ID, tier, existing)
	return rec, nil
}

// Saved lists the signed-in user's saved documents of the session's kind,
// oldest first
func (s *Session) Saved(ctx context.Context) ([]storage.Record, error) {
	id := auth.FromContext(ctx)
	if err := id.Require(); err != nil {
		return nil, err
	}
	store, collection, err := s.store()
	if err != nil {
		return nil, err
	}

	recs, err := store.Select(ctx, collection, storage.Filter{UserID: id.UserID})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.saved = recs
	s.mu.Unlock()
	return append([]storage.Record(nil), recs...), nil
}

// DeleteSaved removes a saved document. The record disappears from the list
// view at once; if the store then fails to delete it, the list is re-read
// from the store and the storage error is returned.
func (s *Session) DeleteSaved(ctx context.Context, recordID uuid.UUID) ([]storage.Record, error) {
	id := auth.FromContext(ctx)
	if err := id.Require(); err != nil {
		return nil, err
	}
	store, collection, err := s.store()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	before := s.saved
	after := make([]storage.Record, 0, len(before))
	for _, r := range before {
		if r.ID != recordID {
			after = append(after, r)
		}
	}
	s.saved = after
	s.mu.Unlock()

	if err := store.Delete(ctx, collection, id.UserID, recordID); err != nil {
		log.Printf("[session] %s delete of %s failed, reloading saved list: %v", s.id, recordID, err)
		recs, reloadErr := store.Select(ctx, collection, storage.Filter{UserID: id.UserID})

		s.mu.Lock()
		if reloadErr == nil {
			s.saved = recs
		} else {
			s.saved = before
		}
		list := append([]storage.Record(nil), s.saved...)
		s.mu.Unlock()
		return list, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.Record(nil), s.saved...), nil
}

// SavedView returns the list view as last loaded, without touching the store
func (s *Session) SavedView() []storage.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.Record(nil), s.saved...)
}

// OpenSaved starts a new session on one of the signed-in user's saved
// documents
func OpenSaved(ctx context.Context, kind types.DocumentKind, recordID uuid.UUID, opts Options) (*Session, error) {
	id := auth.FromContext(ctx)
	if err := id.Require(); err != nil {
		return nil, err
	}
	collection := subscription.Collection(kind)
	if opts.Store == nil {
		return nil, &storage.Error{Op: "select", Collection: collection, Cause: errNoStore}
	}

	recs, err := opts.Store.Select(ctx, collection, storage.Filter{UserID: id.UserID})
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.ID != recordID {
			continue
		}
		doc, templateID, err := Decode(rec.Content)
		if err != nil {
			return nil, err
		}
		if doc.Kind != kind {
			return nil, &document.ValidationError{Field: "kind", Message: fmt.Sprintf("saved document is a %s", doc.Kind)}
		}
		s, err := Open(doc, opts)
		if err != nil {
			return nil, err
		}
		s.SelectTemplate(templateID)
		return s, nil
	}
	return nil, &storage.Error{Op: "select", Collection: collection, Cause: storage.ErrNotFound}
}
