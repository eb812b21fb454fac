// Package session owns one document being edited together with its template
// choice, preview mode and export job. Every mutation of a session is
// serialized in issue order.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/auth"
	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/enhance"
	"github.com/jonathan/resume-studio/internal/export"
	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/ordering"
	"github.com/jonathan/resume-studio/internal/preview"
	"github.com/jonathan/resume-studio/internal/storage"
	"github.com/jonathan/resume-studio/internal/subscription"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

var (
	// ErrSessionNotFound is returned for an unknown session id
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoExporter is returned when a session was created without an export runner
	ErrNoExporter = errors.New("export is not configured")
)

// Options wires a session to its collaborators
type Options struct {
	Registry *templates.Registry
	// Exporter runs exports; usually an *export.Engine
	Exporter      export.Runner
	ExportTimeout time.Duration
	Store         storage.Store
	Quotas        subscription.Quotas
	// CanCreate overrides the quota predicate derived from Quotas
	CanCreate subscription.Predicate
	Enhancer  enhance.Enhancer
	NewID     document.IDGenerator
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = templates.DefaultRegistry()
	}
	if o.Quotas == nil {
		o.Quotas = subscription.DefaultQuotas()
	}
	if o.Enhancer == nil {
		o.Enhancer = enhance.StubEnhancer{}
	}
	if o.NewID == nil {
		o.NewID = document.UUIDGenerator
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Session is one editing session
type Session struct {
	id   uuid.UUID
	opts Options

	mu         sync.Mutex
	doc        *types.Document
	templateID string
	mode       preview.Mode
	job        *export.Job
	saved      []storage.Record
	touched    time.Time
}

// View is a snapshot of a session
type View struct {
	ID         uuid.UUID       `json:"id"`
	Document   *types.Document `json:"document"`
	TemplateID string          `json:"template_id"`
	Mode       preview.Mode    `json:"mode"`
	Export     export.Status   `json:"export"`
}

// New starts a session on a fresh document of the given kind
func New(kind types.DocumentKind, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	doc, err := document.New(kind, document.Options{NewID: opts.NewID, Now: opts.Now})
	if err != nil {
		return nil, err
	}
	return newSession(doc, opts), nil
}

// Open starts a session on an existing document. The session takes ownership
// of doc.
func Open(doc *types.Document, opts Options) (*Session, error) {
	if err := document.Validate(doc); err != nil {
		return nil, err
	}
	return newSession(doc, opts.withDefaults()), nil
}

func newSession(doc *types.Document, opts Options) *Session {
	s := &Session{
		id:         uuid.New(),
		opts:       opts,
		doc:        doc,
		templateID: opts.Registry.DefaultID(),
		mode:       preview.ModeEdit,
		touched:    opts.Now(),
	}
	if opts.Exporter != nil {
		s.job = export.NewJob(opts.Exporter, opts.ExportTimeout)
	}
	return s
}

// ID returns the session id
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Kind returns the kind of the edited document
func (s *Session) Kind() types.DocumentKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Kind
}

// Document returns a copy of the edited document
func (s *Session) Document() *types.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// View returns a snapshot of the whole session
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:         s.id,
		Document:   s.doc.Clone(),
		TemplateID: s.templateID,
		Mode:       s.mode,
		Export:     s.exportStatus(),
	}
}

// LastActive returns when the session was last used
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// edit applies fn to the document under the session lock
func (s *Session) edit(fn func(doc *types.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.opts.Now()
	return fn(s.doc)
}

// UpdateField sets one header or body field
func (s *Session) UpdateField(field, value string) error {
	return s.edit(func(doc *types.Document) error {
		return document.UpdateField(doc, field, value)
	})
}

// AddSection appends a custom section
func (s *Session) AddSection(title string) (types.Section, error) {
	var section types.Section
	err := s.edit(func(doc *types.Document) error {
		var err error
		section, err = document.AddSection(doc, title, s.opts.NewID)
		return err
	})
	return section, err
}

// RemoveSection deletes a section. Removing a missing id is a no-op.
func (s *Session) RemoveSection(id string) bool {
	var removed bool
	_ = s.edit(func(doc *types.Document) error {
		removed = document.RemoveSection(doc, id)
		return nil
	})
	return removed
}

// RenameSection changes a section title
func (s *Session) RenameSection(id, title string) error {
	return s.edit(func(doc *types.Document) error {
		return document.RenameSection(doc, id, title)
	})
}

// SetSectionContent replaces a section's content
func (s *Session) SetSectionContent(id, content string) error {
	return s.edit(func(doc *types.Document) error {
		return document.SetSectionContent(doc, id, content)
	})
}

// MoveSection moves the section at from to position to
func (s *Session) MoveSection(from, to int) error {
	return s.edit(func(doc *types.Document) error {
		return ordering.MoveSection(doc, from, to)
	})
}

// MoveSectionByID moves a section to position to
func (s *Session) MoveSectionByID(id string, to int) error {
	return s.edit(func(doc *types.Document) error {
		return ordering.MoveSectionByID(doc, id, to)
	})
}

// SelectTemplate makes id the active template. An unknown id selects the
// default template and returns a warning.
func (s *Session) SelectTemplate(id string) (string, []string) {
	tpl, found := s.opts.Registry.ResolveOrDefault(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.opts.Now()
	s.templateID = tpl.ID
	if !found {
		return tpl.ID, []string{fmt.Sprintf("unknown template %q, using %q", id, tpl.ID)}
	}
	return tpl.ID, nil
}

// TemplateID returns the active template id
func (s *Session) TemplateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateID
}

// SetMode switches between edit and preview mode
func (s *Session) SetMode(mode preview.Mode) error {
	if _, err := preview.ParseMode(string(mode)); err != nil {
		return &document.ValidationError{Field: "mode", Message: err.Error()}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.opts.Now()
	s.mode = mode
	return nil
}

// Mode returns the preview mode
func (s *Session) Mode() preview.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Preview lays the document out with the active template in the current mode
func (s *Session) Preview() *layout.Tree {
	s.mu.Lock()
	doc, templateID, mode := s.doc.Clone(), s.templateID, s.mode
	s.mu.Unlock()

	tpl, _ := s.opts.Registry.ResolveOrDefault(templateID)
	return preview.Render(doc, tpl, preview.Options{Mode: mode})
}

// PreviewHTML renders the preview as HTML markup
func (s *Session) PreviewHTML() (string, error) {
	return preview.HTML(s.Preview())
}

// StartExport exports a snapshot of the document in the background. Edits made
// after StartExport returns never affect the running export. A second call
// while an export is running returns export.ErrExportInProgress.
func (s *Session) StartExport(ctx context.Context, strategy templates.Strategy) error {
	if s.job == nil {
		return ErrNoExporter
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.opts.Now()

	req := export.Request{
		Document:   s.doc.Clone(),
		TemplateID: s.templateID,
		Format:     export.FormatPDF,
		Strategy:   strategy,
		Key:        archiveKey(auth.FromContext(ctx), s.id),
	}
	if err := s.job.Start(ctx, req); err != nil {
		return err
	}
	log.Printf("[session] %s started export with template %q", s.id, req.TemplateID)
	return nil
}

// ExportStatus returns the state of the session's export
func (s *Session) ExportStatus() export.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportStatus()
}

func (s *Session) exportStatus() export.Status {
	if s.job == nil {
		return export.Status{State: export.StateNotStarted}
	}
	return s.job.Status()
}

// WaitExport blocks until the running export finishes or ctx is done
func (s *Session) WaitExport(ctx context.Context) (export.Status, error) {
	if s.job == nil {
		return export.Status{State: export.StateNotStarted}, nil
	}
	return s.job.Wait(ctx)
}

func archiveKey(id auth.Identity, sessionID uuid.UUID) string {
	owner := "anonymous"
	if id.SignedIn {
		owner = id.UserID
	}
	return owner + "/" + sessionID.String()
}
