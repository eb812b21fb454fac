package session

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/enhance"
	"github.com/jonathan/resume-studio/internal/types"
)

// editedMeanwhile reports that the text changed while the enhancer ran
func editedMeanwhile() error {
	return &enhance.Error{Message: "the text was edited while the suggestion was generated; request it again"}
}

// Enhance replaces the content of one résumé section with generated text. On
// failure, or when the section was edited while the enhancer ran, the section
// is left untouched and a non-fatal *enhance.Error is returned.
func (s *Session) Enhance(ctx context.Context, sectionID, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", &document.ValidationError{Field: "prompt", Message: "enter a prompt for the enhancement"}
	}

	s.mu.Lock()
	i := s.doc.SectionIndex(sectionID)
	if i < 0 {
		s.mu.Unlock()
		return "", &document.SectionNotFoundError{ID: sectionID}
	}
	section := s.doc.Resume.Sections[i]
	s.mu.Unlock()

	text, err := s.opts.Enhancer.Enhance(ctx, enhance.Request{
		Kind:    types.KindResume,
		Prompt:  prompt,
		Section: section.Title,
		Current: section.Content,
	})
	if err != nil {
		log.Printf("[session] %s enhancement of section %s failed: %v", s.id, sectionID, err)
		return "", asEnhanceError(err)
	}

	err = s.edit(func(doc *types.Document) error {
		i := doc.SectionIndex(sectionID)
		if i < 0 {
			return &document.SectionNotFoundError{ID: sectionID}
		}
		if doc.Resume.Sections[i].Content != section.Content {
			return editedMeanwhile()
		}
		return document.SetSectionContent(doc, sectionID, text)
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// EnhanceBody replaces the body of a cover letter with generated text. Like
// Enhance, it gives up when the body was edited while the enhancer ran.
func (s *Session) EnhanceBody(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", &document.ValidationError{Field: "prompt", Message: "enter a prompt for the enhancement"}
	}

	s.mu.Lock()
	if s.doc.Kind != types.KindCoverLetter || s.doc.CoverLetter == nil {
		s.mu.Unlock()
		return "", &document.ValidationError{Field: "bodyText", Message: "only cover letters have a body"}
	}
	company, current := s.doc.CoverLetter.CompanyName, s.doc.CoverLetter.BodyText
	s.mu.Unlock()

	text, err := s.opts.Enhancer.Enhance(ctx, enhance.Request{
		Kind:    types.KindCoverLetter,
		Prompt:  prompt,
		Current: current,
		Company: company,
	})
	if err != nil {
		log.Printf("[session] %s cover letter enhancement failed: %v", s.id, err)
		return "", asEnhanceError(err)
	}

	err = s.edit(func(doc *types.Document) error {
		if doc.CoverLetter.BodyText != current {
			return editedMeanwhile()
		}
		return document.UpdateField(doc, "bodyText", text)
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func asEnhanceError(err error) error {
	var e *enhance.Error
	if errors.As(err, &e) {
		return err
	}
	return &enhance.Error{Message: "enhancement failed", Cause: err}
}
