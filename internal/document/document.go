package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/types"
)

// LetterDateLayout is the display format of a cover letter date
const LetterDateLayout = "January 2, 2006"

// NewSectionTitle is the title given to sections created by AddSection
const NewSectionTitle = "New Section"

var validate = validator.New()

// IDGenerator produces section identifiers
type IDGenerator func() string

// UUIDGenerator returns a random UUID string
func UUIDGenerator() string {
	return uuid.NewString()
}

// Options controls document creation. Zero values use defaults.
type Options struct {
	NewID IDGenerator
	Now   func() time.Time
}

func (o Options) withDefaults() Options {
	if o.NewID == nil {
		o.NewID = UUIDGenerator
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

var defaultSections = []struct {
	title string
	kind  types.SectionKind
}{
	{"Education", types.SectionEducation},
	{"Experience", types.SectionExperience},
	{"Skills", types.SectionSkills},
	{"Achievements", types.SectionAchievements},
}

// New creates an empty document of the given kind. A résumé starts with the
// Education, Experience, Skills and Achievements sections, all empty.
func New(kind types.DocumentKind, opts Options) (*types.Document, error) {
	opts = opts.withDefaults()

	doc := &types.Document{ID: uuid.New(), Kind: kind}
	switch kind {
	case types.KindResume:
		r := &types.Resume{Sections: make([]types.Section, 0, len(defaultSections))}
		for _, d := range defaultSections {
			r.Sections = append(r.Sections, types.Section{
				ID:    nextID(r.Sections, opts.NewID),
				Title: d.title,
				Kind:  d.kind,
			})
		}
		doc.Resume = r
	case types.KindCoverLetter:
		doc.CoverLetter = &types.CoverLetter{
			LetterDate: opts.Now().Format(LetterDateLayout),
		}
	default:
		return nil, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q", kind)}
	}
	return doc, nil
}

// nextID draws an id and panics if it collides with an existing section.
// A colliding generator is a programming error, not a user error.
func nextID(existing []types.Section, newID IDGenerator) string {
	id := newID()
	if id == "" {
		panic("document: id generator returned an empty id")
	}
	for _, s := range existing {
		if s.ID == id {
			panic(fmt.Sprintf("document: id generator returned duplicate section id %q", id))
		}
	}
	return id
}

type fieldSpec struct {
	kind types.DocumentKind
	rule string
	set  func(d *types.Document, v string)
}

var fields = map[string]fieldSpec{
	"fullName":          {types.KindResume, "max=200", func(d *types.Document, v string) { d.Resume.FullName = v }},
	"email":             {types.KindResume, "omitempty,email", func(d *types.Document, v string) { d.Resume.Email = v }},
	"phone":             {types.KindResume, "max=64", func(d *types.Document, v string) { d.Resume.Phone = v }},
	"location":          {types.KindResume, "max=200", func(d *types.Document, v string) { d.Resume.Location = v }},
	"professionalTitle": {types.KindResume, "max=200", func(d *types.Document, v string) { d.Resume.ProfessionalTitle = v }},
	"summary":           {types.KindResume, "", func(d *types.Document, v string) { d.Resume.Summary = v }},

	"recipientName":  {types.KindCoverLetter, "max=200", func(d *types.Document, v string) { d.CoverLetter.RecipientName = v }},
	"companyName":    {types.KindCoverLetter, "max=200", func(d *types.Document, v string) { d.CoverLetter.CompanyName = v }},
	"companyAddress": {types.KindCoverLetter, "max=400", func(d *types.Document, v string) { d.CoverLetter.CompanyAddress = v }},
	"bodyText":       {types.KindCoverLetter, "", func(d *types.Document, v string) { d.CoverLetter.BodyText = v }},
	"senderName":     {types.KindCoverLetter, "max=200", func(d *types.Document, v string) { d.CoverLetter.Sender.FullName = v }},
	"senderEmail":    {types.KindCoverLetter, "omitempty,email", func(d *types.Document, v string) { d.CoverLetter.Sender.Email = v }},
	"senderPhone":    {types.KindCoverLetter, "max=64", func(d *types.Document, v string) { d.CoverLetter.Sender.Phone = v }},
	"senderLocation": {types.KindCoverLetter, "max=200", func(d *types.Document, v string) { d.CoverLetter.Sender.Location = v }},
	"letterDate":     {types.KindCoverLetter, "max=64", func(d *types.Document, v string) { d.CoverLetter.LetterDate = v }},
}

// Fields returns the field names accepted by UpdateField for a document kind
func Fields(kind types.DocumentKind) []string {
	var names []string
	for name, def := range fields {
		if def.kind == kind {
			names = append(names, name)
		}
	}
	return names
}

// UpdateField sets exactly one header or body field. An unknown field or a
// malformed value returns a ValidationError and leaves the document unchanged.
func UpdateField(doc *types.Document, field, value string) error {
	def, ok := fields[field]
	if !ok || def.kind != doc.Kind {
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown field for %s", doc.Kind)}
	}
	if err := checkVariant(doc); err != nil {
		return err
	}
	if def.rule != "" {
		if err := validate.Var(value, def.rule); err != nil {
			return &ValidationError{Field: field, Message: "invalid value", Cause: err}
		}
	}
	def.set(doc, value)
	return nil
}

// AddSection appends a custom section with a fresh id and returns it.
// An empty title falls back to "New Section".
func AddSection(doc *types.Document, title string, newID IDGenerator) (types.Section, error) {
	if doc.Kind != types.KindResume || doc.Resume == nil {
		return types.Section{}, &ValidationError{Field: "sections", Message: "only résumés have sections"}
	}
	if newID == nil {
		newID = UUIDGenerator
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = NewSectionTitle
	}
	if err := validate.Var(title, "max=120"); err != nil {
		return types.Section{}, &ValidationError{Field: "title", Message: "title too long", Cause: err}
	}

	section := types.Section{
		ID:    nextID(doc.Resume.Sections, newID),
		Title: title,
		Kind:  types.SectionCustom,
	}
	doc.Resume.Sections = append(doc.Resume.Sections, section)
	return section, nil
}

// RemoveSection deletes the section with the given id. Removing an id that is
// not present is a no-op. It reports whether a section was removed.
func RemoveSection(doc *types.Document, id string) bool {
	i := doc.SectionIndex(id)
	if i < 0 {
		return false
	}
	sections := doc.Resume.Sections
	doc.Resume.Sections = append(sections[:i:i], sections[i+1:]...)
	return true
}

// RenameSection changes the title of one section
func RenameSection(doc *types.Document, id, title string) error {
	i := doc.SectionIndex(id)
	if i < 0 {
		return &SectionNotFoundError{ID: id}
	}
	if err := validate.Var(title, "max=120"); err != nil {
		return &ValidationError{Field: "title", Message: "title too long", Cause: err}
	}
	doc.Resume.Sections[i].Title = title
	return nil
}

// SetSectionContent replaces the content of one section
func SetSectionContent(doc *types.Document, id, content string) error {
	i := doc.SectionIndex(id)
	if i < 0 {
		return &SectionNotFoundError{ID: id}
	}
	doc.Resume.Sections[i].Content = content
	return nil
}

// Validate checks the whole document: the variant matches the kind, field
// values are well formed, and section ids are unique.
func Validate(doc *types.Document) error {
	if doc == nil {
		return &ValidationError{Field: "document", Message: "document is nil"}
	}
	if err := checkVariant(doc); err != nil {
		return err
	}
	if err := validate.Struct(doc); err != nil {
		return &ValidationError{Field: "document", Message: "invalid document", Cause: err}
	}

	seen := make(map[string]bool)
	for _, s := range doc.Sections() {
		if !s.Kind.IsValid() {
			return &ValidationError{Field: "sections", Message: fmt.Sprintf("unknown section kind %q", s.Kind)}
		}
		if seen[s.ID] {
			return &ValidationError{Field: "sections", Message: fmt.Sprintf("duplicate section id %q", s.ID)}
		}
		seen[s.ID] = true
	}
	return nil
}

func checkVariant(doc *types.Document) error {
	switch doc.Kind {
	case types.KindResume:
		if doc.Resume == nil || doc.CoverLetter != nil {
			return &ValidationError{Field: "kind", Message: "résumé document must carry only résumé content"}
		}
	case types.KindCoverLetter:
		if doc.CoverLetter == nil || doc.Resume != nil {
			return &ValidationError{Field: "kind", Message: "cover letter document must carry only cover letter content"}
		}
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q", doc.Kind)}
	}
	return nil
}
