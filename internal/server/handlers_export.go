package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-studio/internal/export"
	"github.com/jonathan/resume-studio/internal/types"
)

// StartExportRequest chooses the export strategy. An empty strategy lets the
// template decide.
type StartExportRequest struct {
	Strategy string `json:"strategy,omitempty"`
}

// handleStartExport starts a background export of the session's document
func (s *Server) handleStartExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req StartExportRequest
	if err := s.decodeBody(w, r, &req, true); err != nil {
		s.failure(w, r, err)
		return
	}
	strategy, err := export.ParseStrategy(req.Strategy)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	if err := sess.StartExport(r.Context(), strategy); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, sess.ExportStatus())
}

// handleExportStatus reports the state of the session's export
func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.ExportStatus())
}

// handleExportEvents streams the export state until it finishes
func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteStatus(sess.ExportStatus()); err != nil {
		return
	}

	st, err := sess.WaitExport(r.Context())
	if err != nil {
		// client went away
		log.Printf("[server] export stream for %s ended: %v", sess.ID(), err)
		return
	}
	if st.State == export.StateNotStarted {
		sse.WriteError("no export has been started")
		return
	}
	sse.WriteComplete(sess.ID().String(), st)
}

// handleExportPDF returns the document produced by the last successful export
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	st := sess.ExportStatus()
	switch st.State {
	case export.StateSucceeded:
	case export.StateFailed:
		err := st.Err
		if err == nil {
			err = errors.New(st.Error)
		}
		s.failure(w, r, err)
		return
	case export.StateInProgress:
		s.failure(w, r, export.ErrExportInProgress)
		return
	default:
		s.errorResponse(w, http.StatusNotFound, "no export has been started")
		return
	}

	res := st.Result
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", pdfFilename(sess.Kind())))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Bytes)))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.PageCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Bytes)
}

func pdfFilename(kind types.DocumentKind) string {
	if kind == types.KindCoverLetter {
		return "cover-letter.pdf"
	}
	return "resume.pdf"
}
