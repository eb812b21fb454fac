package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("enhance.json", "resume-section")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Section}}")
	assert.Contains(t, prompt, "{{.Request}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("enhance.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet("enhance.json", "cover-letter"))
	})
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render("enhance.json", "cover-letter", map[string]string{
		"Company": "Acme Corp",
		"Request": "leadership",
		"Current": "",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "cover letter for Acme Corp")
	assert.Contains(t, prompt, "Focus the letter on: leadership")
	assert.NotContains(t, prompt, "{{.")
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render("enhance.json", "resume-section", map[string]string{
		"Section": "Skills",
		"Request": "cloud",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Current")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"Name", "Company"}, Placeholders("{{.Name}} at {{.Company}}, {{.Name}}"))
	assert.Empty(t, Placeholders("no variables {{ .Spaced }}"))
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{})) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("enhance.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"cover-letter", "resume-section"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("enhance.json", "resume-section")
	require.NoError(t, err)
	prompt2, err := Get("enhance.json", "resume-section")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
