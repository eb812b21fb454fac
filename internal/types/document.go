// Package types provides type definitions for the documents edited and exported by resume-studio.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/google/uuid"
)

// DocumentKind identifies which variant a Document carries
type DocumentKind string

const (
	// KindResume is a résumé with an ordered list of sections
	KindResume DocumentKind = "resume"
	// KindCoverLetter is a single-body cover letter
	KindCoverLetter DocumentKind = "cover_letter"
)

// IsValid reports whether k is a known document kind
func (k DocumentKind) IsValid() bool {
	return k == KindResume || k == KindCoverLetter
}

// SectionKind classifies a résumé section. It drives the section icon.
type SectionKind string

// Section kinds. The first four are the defaults of a new résumé.
const (
	SectionEducation    SectionKind = "education"
	SectionExperience   SectionKind = "experience"
	SectionSkills       SectionKind = "skills"
	SectionAchievements SectionKind = "achievements"
	SectionCustom       SectionKind = "custom"
)

// IsValid reports whether k is one of the closed set of section kinds
func (k SectionKind) IsValid() bool {
	switch k {
	case SectionEducation, SectionExperience, SectionSkills, SectionAchievements, SectionCustom:
		return true
	}
	return false
}

// Section is a titled block of free text inside a résumé.
// ID is assigned once and never changes; it is the only key used to address the section.
type Section struct {
	ID      string      `json:"id" validate:"required"`
	Title   string      `json:"title" validate:"max=120"`
	Content string      `json:"content"`
	Kind    SectionKind `json:"kind" validate:"required"`
}

// Resume holds the header fields and the ordered sections of a résumé
type Resume struct {
	FullName          string    `json:"full_name" validate:"max=200"`
	Email             string    `json:"email" validate:"omitempty,email"`
	Phone             string    `json:"phone" validate:"max=64"`
	Location          string    `json:"location" validate:"max=200"`
	ProfessionalTitle string    `json:"professional_title" validate:"max=200"`
	Summary           string    `json:"summary"`
	Sections          []Section `json:"sections" validate:"dive"`
}

// Sender is the author block printed at the top of a cover letter
type Sender struct {
	FullName string `json:"full_name" validate:"max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=64"`
	Location string `json:"location" validate:"max=200"`
}

// CoverLetter holds the recipient block, the body and the sender of a cover letter.
// LetterDate is stored as display text so that layout never reads the clock.
type CoverLetter struct {
	RecipientName  string `json:"recipient_name" validate:"max=200"`
	CompanyName    string `json:"company_name" validate:"max=200"`
	CompanyAddress string `json:"company_address" validate:"max=400"`
	BodyText       string `json:"body_text"`
	Sender         Sender `json:"sender"`
	LetterDate     string `json:"letter_date" validate:"max=64"`
}

// Document is the editable content of one résumé or cover letter.
// Exactly one of Resume and CoverLetter is set, matching Kind.
type Document struct {
	ID          uuid.UUID    `json:"id"`
	Kind        DocumentKind `json:"kind" validate:"required,oneof=resume cover_letter"`
	Resume      *Resume      `json:"resume,omitempty"`
	CoverLetter *CoverLetter `json:"cover_letter,omitempty"`
}

// Sections returns the résumé sections, or nil for a cover letter
func (d *Document) Sections() []Section {
	if d == nil || d.Resume == nil {
		return nil
	}
	return d.Resume.Sections
}

// SectionIndex returns the position of the section with the given id, or -1
func (d *Document) SectionIndex(id string) int {
	for i, s := range d.Sections() {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{ID: d.ID, Kind: d.Kind}
	if d.Resume != nil {
		r := *d.Resume
		r.Sections = append([]Section(nil), d.Resume.Sections...)
		out.Resume = &r
	}
	if d.CoverLetter != nil {
		c := *d.CoverLetter
		out.CoverLetter = &c
	}
	return out
}
