//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_JSONMarshaling(t *testing.T) {
	doc := Document{
		ID:   uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Kind: KindResume,
		Resume: &Resume{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Sections: []Section{{ID: "s1", Title: "Education", Kind: SectionEducation}},
		},
	}

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"kind": "resume"`)
	assert.Contains(t, string(jsonBytes), `"full_name": "Ada Lovelace"`)
	assert.Contains(t, string(jsonBytes), `"kind": "education"`)
	assert.NotContains(t, string(jsonBytes), `"cover_letter"`)
}

func TestDocument_Clone_IsDeep(t *testing.T) {
	doc := &Document{
		Kind: KindResume,
		Resume: &Resume{
			FullName: "Ada",
			Sections: []Section{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
		},
	}

	clone := doc.Clone()
	clone.Resume.FullName = "Grace"
	clone.Resume.Sections[0].Title = "changed"
	clone.Resume.Sections = append(clone.Resume.Sections, Section{ID: "c"})

	assert.Equal(t, "Ada", doc.Resume.FullName)
	assert.Equal(t, "A", doc.Resume.Sections[0].Title)
	assert.Len(t, doc.Resume.Sections, 2)
}

func TestDocument_Clone_CoverLetter(t *testing.T) {
	doc := &Document{Kind: KindCoverLetter, CoverLetter: &CoverLetter{BodyText: "hello"}}
	clone := doc.Clone()
	clone.CoverLetter.BodyText = "bye"

	assert.Equal(t, "hello", doc.CoverLetter.BodyText)
	assert.Nil(t, clone.Resume)
	assert.Nil(t, clone.Sections())
}

func TestDocument_SectionIndex(t *testing.T) {
	doc := &Document{Kind: KindResume, Resume: &Resume{Sections: []Section{{ID: "a"}, {ID: "b"}}}}

	assert.Equal(t, 1, doc.SectionIndex("b"))
	assert.Equal(t, -1, doc.SectionIndex("zzz"))
}

func TestSectionKind_IsValid(t *testing.T) {
	assert.True(t, SectionEducation.IsValid())
	assert.True(t, SectionCustom.IsValid())
	assert.False(t, SectionKind("hobbies").IsValid())
	assert.True(t, KindCoverLetter.IsValid())
	assert.False(t, DocumentKind("memo").IsValid())
}
