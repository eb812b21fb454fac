package server

import (
	"maps"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/preview"
	"github.com/jonathan/resume-studio/internal/session"
	"github.com/jonathan/resume-studio/internal/types"
)

// CreateSessionRequest starts a session on a new document
type CreateSessionRequest struct {
	Kind       types.DocumentKind `json:"kind"`
	TemplateID string             `json:"template_id,omitempty"`
}

// SessionResponse is a session view plus any non-fatal warnings
type SessionResponse struct {
	session.View
	Warnings []string `json:"warnings,omitempty"`
}

// session returns the live session named by the {id} path segment
func (s *Server) session(r *http.Request) (*session.Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, session.ErrSessionNotFound
	}
	return s.sessions.Get(id)
}

func parseKind(kind types.DocumentKind) (types.DocumentKind, error) {
	if kind == "" {
		return types.KindResume, nil
	}
	if !kind.IsValid() {
		return "", &ErrValidation{Field: "kind", Message: "must be resume or cover_letter"}
	}
	return kind, nil
}

// handleListTemplates lists the available templates
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	registry := s.sessions.Options().Registry
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"default":   registry.DefaultID(),
		"templates": registry.List(),
	})
}

// handleCreateSession starts an editing session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := s.decodeBody(w, r, &req, true); err != nil {
		s.failure(w, r, err)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	sess, warnings, err := s.sessions.Create(kind, req.TemplateID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, SessionResponse{View: sess.View(), Warnings: warnings})
}

// handleGetSession returns a session snapshot
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

// handleCloseSession ends a session
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil || !s.sessions.Close(id) {
		s.failure(w, r, session.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateFields sets header or body fields. Fields are applied in name
// order and the first invalid one stops the update.
func (s *Server) handleUpdateFields(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var fields map[string]string
	if err := s.decodeBody(w, r, &fields, false); err != nil {
		s.failure(w, r, err)
		return
	}

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if err := sess.UpdateField(name, fields[name]); err != nil {
			s.failure(w, r, err)
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

// handleAddSection appends a custom section
func (s *Server) handleAddSection(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := s.decodeBody(w, r, &req, true); err != nil {
		s.failure(w, r, err)
		return
	}

	section, err := sess.AddSection(req.Title)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, section)
}

// handleRemoveSection deletes a section. Removing a missing section succeeds
// with removed set to false.
func (s *Server) handleRemoveSection(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	removed := sess.RemoveSection(r.PathValue("section_id"))
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"removed": removed,
		"session": sess.View(),
	})
}

// handleRenameSection changes a section title
func (s *Server) handleRenameSection(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := s.decodeBody(w, r, &req, false); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := sess.RenameSection(r.PathValue("section_id"), req.Title); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

// handleSetSectionContent replaces a section's content
func (s *Server) handleSetSectionContent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := s.decodeBody(w, r, &req, false); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := sess.SetSectionContent(r.PathValue("section_id"), req.Content); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

// MoveSectionRequest is a drag-and-drop gesture. SectionID takes precedence
// over From.
type MoveSectionRequest struct {
	From      *int   `json:"from,omitempty"`
	SectionID string `json:"section_id,omitempty"`
	To        *int   `json:"to"`
}

// handleMoveSection reorders résumé sections
func (s *Server) handleMoveSection(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req MoveSectionRequest
	if err := s.decodeBody(w, r, &req, false); err != nil {
		s.failure(w, r, err)
		return
	}
	if req.To == nil {
		s.failure(w, r, &ErrValidation{Field: "to", Message: "is required"})
		return
	}

	switch {
	case req.SectionID != "":
		err = sess.MoveSectionByID(req.SectionID, *req.To)
	case req.From != nil:
		err = sess.MoveSection(*req.From, *req.To)
	default:
		err = &ErrValidation{Field: "from", Message: "from or section_id is required"}
	}
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

// handleSelectTemplate switches the active template. Unknown ids fall back to
// the default with a warning.
func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := s.decodeBody(w, r, &req, false); err != nil {
		s.failure(w, r, err)
		return
	}

	_, warnings := sess.SelectTemplate(req.TemplateID)
	s.jsonResponse(w, http.StatusOK, SessionResponse{View: sess.View(), Warnings: warnings})
}

// handleSetMode switches between edit and preview mode
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if err := s.decodeBody(w, r, &req, false); err != nil {
		s.failure(w, r, err)
		return
	}
	mode, err := preview.ParseMode(req.Mode)
	if err != nil {
		s.failure(w, r, &ErrValidation{Field: "mode", Message: err.Error()})
		return
	}
	if err := sess.SetMode(mode); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

// handlePreviewHTML renders the preview as an HTML page
func (s *Server) handlePreviewHTML(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	html, err := sess.PreviewHTML()
	if err != nil {
		s.failure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// handlePreviewTree returns the layout tree the preview and vector export share
func (s *Server) handlePreviewTree(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Preview())
}

// EnhanceRequest asks for generated text. SectionID is required for résumés
// and ignored for cover letters.
type EnhanceRequest struct {
	SectionID string `json:"section_id,omitempty"`
	Prompt    string `json:"prompt"`
}

// handleEnhance replaces a section, or a cover letter body, with generated text
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req EnhanceRequest
	if err := s.decodeBody(w, r, &req, false); err != nil {
		s.failure(w, r, err)
		return
	}

	var text string
	if sess.Kind() == types.KindCoverLetter {
		text, err = sess.EnhanceBody(r.Context(), req.Prompt)
	} else {
		text, err = sess.Enhance(r.Context(), req.SectionID, req.Prompt)
	}
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"text":    text,
		"session": sess.View(),
	})
}
