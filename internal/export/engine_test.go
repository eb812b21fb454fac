package export

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

type memorySink struct {
	mu   sync.Mutex
	keys []string
	data map[string][]byte
	err  error
}

func (s *memorySink) Put(_ context.Context, key, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.keys = append(s.keys, key)
	s.data[key] = data
	return nil
}

func newEngine(opts Options) *Engine {
	return NewEngine(templates.DefaultRegistry(), opts)
}

func TestEngine_UnknownTemplateFallsBack(t *testing.T) {
	e := newEngine(Options{})

	res, err := e.Run(context.Background(), Request{Document: newResume(t), TemplateID: "nonexistent"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Bytes)
	assert.GreaterOrEqual(t, res.PageCount, 1)
	assert.Equal(t, templates.DefaultID, res.TemplateID)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "nonexistent")

	pages, err := Verify(res.Bytes)
	require.NoError(t, err)
	assert.Equal(t, res.PageCount, pages)
}

func TestEngine_EmptyTemplateUsesDefaultSilently(t *testing.T) {
	res, err := newEngine(Options{}).Run(context.Background(), Request{Document: newResume(t)})
	require.NoError(t, err)

	assert.Equal(t, templates.DefaultID, res.TemplateID)
	assert.Empty(t, res.Warnings)
}

func TestEngine_StrategySelection(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		templateID string
		requested  templates.Strategy
		want       templates.Strategy
		warns      bool
	}{
		{"template preference vector", Options{Rasterizer: &fakeRasterizer{}}, "modern", "", templates.StrategyVector, false},
		{"template preference raster", Options{Rasterizer: &fakeRasterizer{}}, "creative", "", templates.StrategyRaster, false},
		{"configured default wins over template", Options{Rasterizer: &fakeRasterizer{}, Strategy: templates.StrategyVector}, "creative", "", templates.StrategyVector, true},
		{"request override wins over config", Options{Rasterizer: &fakeRasterizer{}, Strategy: templates.StrategyVector}, "modern", templates.StrategyRaster, templates.StrategyRaster, false},
		{"raster without rasterizer falls back", Options{}, "creative", "", templates.StrategyVector, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newEngine(tt.opts).Run(context.Background(), Request{
				Document: newResume(t), TemplateID: tt.templateID, Strategy: tt.requested,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Strategy)
			assert.Equal(t, tt.warns, len(res.Warnings) > 0, "%v", res.Warnings)
		})
	}
}

func TestEngine_RejectsBadRequests(t *testing.T) {
	e := newEngine(Options{})

	_, err := e.Run(context.Background(), Request{Document: newResume(t), Format: "docx"})
	var format *UnsupportedFormatError
	assert.ErrorAs(t, err, &format)

	_, err = e.Run(context.Background(), Request{Document: newResume(t), Strategy: "laser"})
	var strategy *UnsupportedStrategyError
	assert.ErrorAs(t, err, &strategy)

	_, err = e.Run(context.Background(), Request{})
	var invalid *document.ValidationError
	assert.ErrorAs(t, err, &invalid)

	bad := newResume(t)
	bad.CoverLetter = &types.CoverLetter{}
	_, err = e.Run(context.Background(), Request{Document: bad})
	assert.ErrorAs(t, err, &invalid)
}

func TestEngine_TimeoutIsReported(t *testing.T) {
	e := newEngine(Options{Rasterizer: &fakeRasterizer{delay: time.Second}, Timeout: 50 * time.Millisecond})

	_, err := e.Run(context.Background(), Request{Document: newResume(t), TemplateID: "creative"})

	var timeout *TimeoutError
	assert.ErrorAs(t, err, &timeout)
}

func TestEngine_ArchivesSuccessfulExports(t *testing.T) {
	sink := &memorySink{}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := newEngine(Options{Sink: sink, Now: func() time.Time { return now }})

	res, err := e.Run(context.Background(), Request{Document: newResume(t), Key: "anonymous/abc"})
	require.NoError(t, err)

	require.Len(t, sink.keys, 1)
	assert.Equal(t, "exports/anonymous/abc/20240301T120000.000Z.pdf", sink.keys[0])
	assert.Equal(t, res.Bytes, sink.data[sink.keys[0]])
}

func TestEngine_ArchiveFailureDoesNotFailExport(t *testing.T) {
	sink := &memorySink{err: errors.New("bucket unavailable")}
	e := newEngine(Options{Sink: sink})

	res, err := e.Run(context.Background(), Request{Document: newResume(t), Key: "u/s"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(res.Bytes), "%PDF-"))
}

func TestEngine_WithoutKeyDoesNotArchive(t *testing.T) {
	sink := &memorySink{}
	_, err := newEngine(Options{Sink: sink}).Run(context.Background(), Request{Document: newResume(t)})
	require.NoError(t, err)
	assert.Empty(t, sink.keys)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, templates.Strategy(""), s)

	s, err = ParseStrategy("raster")
	require.NoError(t, err)
	assert.Equal(t, templates.StrategyRaster, s)

	_, err = ParseStrategy("bitmap")
	assert.Error(t, err)
}
