package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

func TestVector_AllTemplatesBothKinds(t *testing.T) {
	docs := map[string]*types.Document{
		"resume":       newResume(t),
		"cover letter": newCoverLetter(t),
	}

	for _, tpl := range templates.Builtin() {
		for name, doc := range docs {
			t.Run(tpl.ID+"/"+name, func(t *testing.T) {
				res, err := Vector{}.Export(context.Background(), doc, tpl)
				require.NoError(t, err)

				assert.True(t, strings.HasPrefix(string(res.Bytes), "%PDF-"))
				assert.Equal(t, 1, res.PageCount)
				assert.Equal(t, templates.StrategyVector, res.Strategy)
				assert.Equal(t, tpl.ID, res.TemplateID)
			})
		}
	}
}

func TestVector_Deterministic(t *testing.T) {
	docs := []*types.Document{newResume(t), newCoverLetter(t)}
	for _, tpl := range templates.Builtin() {
		for _, doc := range docs {
			tree := resolve(t, tpl.ID).Layout(doc)

			first, _, err := RenderVector(tree)
			require.NoError(t, err)
			for i := 0; i < 20; i++ {
				again, _, err := RenderVector(tree)
				require.NoError(t, err)
				require.Equal(t, first, again, "%s %s render %d", tpl.ID, doc.Kind, i)
			}
		}
	}
}

func TestVector_IconsAreVectorPaths(t *testing.T) {
	data, _, err := RenderVector(resolve(t, "modern").Layout(newResume(t)))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "/Subtype /Image")
}

func TestVector_ContainsDocumentText(t *testing.T) {
	res, err := Vector{}.Export(context.Background(), newResume(t), resolve(t, "professional"))
	require.NoError(t, err)

	text, err := PlainText(res.Bytes)
	require.NoError(t, err)
	assert.Contains(t, text, "Ada")
	assert.Contains(t, text, "Education")
}

func TestVector_LongContentFlowsOntoMorePages(t *testing.T) {
	doc := newResume(t)
	long := strings.Repeat("Designed and built a difference engine component.\n", 120)
	require.NoError(t, document.SetSectionContent(doc, doc.Resume.Sections[1].ID, long))

	res, err := Vector{}.Export(context.Background(), doc, resolve(t, "modern"))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.PageCount, 2)
}

func TestVector_WarnsOnUnencodableText(t *testing.T) {
	doc := newResume(t)
	require.NoError(t, document.UpdateField(doc, "fullName", "山田 太郎"))

	res, err := Vector{}.Export(context.Background(), doc, resolve(t, "modern"))
	require.NoError(t, err)

	assert.Contains(t, res.Warnings, warnEncoding)
	assert.Equal(t, 1, res.PageCount)
}

func TestVector_GradientDegradesToFlatColour(t *testing.T) {
	res, err := Vector{}.Export(context.Background(), newResume(t), resolve(t, "creative"))
	require.NoError(t, err)

	assert.Contains(t, res.Warnings, warnGradient)
	assert.NotContains(t, string(res.Bytes), "/ShadingType")

	res, err = Vector{}.Export(context.Background(), newResume(t), resolve(t, "modern"))
	require.NoError(t, err)
	assert.NotContains(t, res.Warnings, warnGradient)
}

func TestVector_LatinAccentsNeedNoWarning(t *testing.T) {
	doc := newResume(t)
	require.NoError(t, document.UpdateField(doc, "fullName", "José Müller"))

	res, err := Vector{}.Export(context.Background(), doc, resolve(t, "elegant"))
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
}

func TestVector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Vector{}.Export(ctx, newResume(t), resolve(t, "modern"))

	var failure *FailureError
	assert.ErrorAs(t, err, &failure)
}

func TestRenderVector_EmptyTree(t *testing.T) {
	_, _, err := RenderVector(nil)
	var failure *FailureError
	assert.ErrorAs(t, err, &failure)
}

func TestCompileIcon(t *testing.T) {
	for _, icon := range []layout.Icon{
		layout.IconGraduationCap, layout.IconBriefcase, layout.IconCode, layout.IconAward,
		layout.IconPlus, layout.IconMail, layout.IconPhone, layout.IconMapPin,
	} {
		outline, err := compileIcon(icon)
		require.NoError(t, err, icon)
		assert.Equal(t, 24.0, outline.viewBox)
		assert.Equal(t, 2.0, outline.lineWidth)
		assert.NotEmpty(t, outline.paths)
	}

	_, err := compileIcon("rocket")
	assert.Error(t, err)
}

func TestIconOutline_Stroke(t *testing.T) {
	outline, err := compileIcon(layout.IconAward)
	require.NoError(t, err)

	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: 100, Ht: 100}})
	pdf.SetCompression(false)
	pdf.AddPage()
	require.NoError(t, outline.stroke(pdf, 10, 10, 12, templates.Builtin()[0].PrimaryColor))
	require.NoError(t, pdf.Error())

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	content := buf.String()
	// the circle of the award icon becomes bezier curves
	assert.Contains(t, content, " c\n")
	assert.Contains(t, content, "1 J")
	_, err = Verify(buf.Bytes())
	assert.NoError(t, err)
}
