package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/storage"
	"github.com/jonathan/resume-studio/internal/types"
)

// SavedResponse is the signed-in user's list of saved documents
type SavedResponse struct {
	Records []storage.Record `json:"records"`
	Count   int              `json:"count"`
}

func savedResponse(recs []storage.Record) SavedResponse {
	if recs == nil {
		recs = []storage.Record{}
	}
	return SavedResponse{Records: recs, Count: len(recs)}
}

// handlePersist saves the session's document for the signed-in user
func (s *Server) handlePersist(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	rec, err := sess.Persist(r.Context())
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, rec)
}

// handleListSaved lists saved documents of the session's kind
func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	recs, err := sess.Saved(r.Context())
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, savedResponse(recs))
}

// handleDeleteSaved deletes a saved document. On a storage failure the body
// still carries the reloaded list.
func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	recordID, err := uuid.Parse(r.PathValue("record_id"))
	if err != nil {
		s.failure(w, r, &ErrValidation{Field: "record_id", Message: "must be a UUID"})
		return
	}

	recs, err := sess.DeleteSaved(r.Context(), recordID)
	if err != nil {
		status := HTTPStatus(err)
		if recs == nil {
			s.errorResponse(w, status, err.Error())
			return
		}
		s.jsonResponse(w, status, map[string]any{
			"error":   err.Error(),
			"records": recs,
			"count":   len(recs),
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, savedResponse(recs))
}

// OpenSavedRequest starts a session on a saved document
type OpenSavedRequest struct {
	Kind     types.DocumentKind `json:"kind"`
	RecordID uuid.UUID          `json:"record_id"`
}

// handleOpenSaved starts a session on one of the signed-in user's documents
func (s *Server) handleOpenSaved(w http.ResponseWriter, r *http.Request) {
	var req OpenSavedRequest
	if err := s.decodeBody(w, r, &req, false); err != nil {
		s.failure(w, r, err)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if req.RecordID == uuid.Nil {
		s.failure(w, r, &ErrValidation{Field: "record_id", Message: "is required"})
		return
	}

	sess, err := s.sessions.OpenSaved(r.Context(), kind, req.RecordID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, SessionResponse{View: sess.View()})
}
