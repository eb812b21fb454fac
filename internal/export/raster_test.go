package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-studio/internal/templates"
)

func TestRaster_Success(t *testing.T) {
	fake := &fakeRasterizer{}
	r := Raster{Rasterizer: fake, InitialBackoff: time.Millisecond}

	res, err := r.Export(context.Background(), newResume(t), resolve(t, "creative"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.PageCount)
	assert.Equal(t, templates.StrategyRaster, res.Strategy)
	assert.Equal(t, 1, fake.Calls())
	assert.NotContains(t, fake.markup, "<svg")
	assert.Contains(t, fake.markup, "Ada Lovelace")
}

func TestRaster_RetriesTransientFailures(t *testing.T) {
	fake := &fakeRasterizer{failures: 2}
	r := Raster{Rasterizer: fake, MaxAttempts: 3, InitialBackoff: time.Millisecond}

	res, err := r.Export(context.Background(), newResume(t), resolve(t, "creative"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.PageCount)
	assert.Equal(t, 3, fake.Calls())
}

func TestRaster_ExhaustedRetriesFail(t *testing.T) {
	fake := &fakeRasterizer{failures: 100}
	r := Raster{Rasterizer: fake, MaxAttempts: 3, InitialBackoff: time.Millisecond}

	res, err := r.Export(context.Background(), newResume(t), resolve(t, "creative"))

	assert.Nil(t, res)
	var failure *FailureError
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Message, "3 attempt(s)")
	assert.Equal(t, 3, fake.Calls())
}

func TestRaster_InvalidImageIsRetried(t *testing.T) {
	fake := &fakeRasterizer{invalid: true}
	r := Raster{Rasterizer: fake, MaxAttempts: 2, InitialBackoff: time.Millisecond}

	_, err := r.Export(context.Background(), newResume(t), resolve(t, "creative"))

	var failure *FailureError
	assert.ErrorAs(t, err, &failure)
	assert.Equal(t, 2, fake.Calls())
}

func TestRaster_DeadlineIsTimeout(t *testing.T) {
	fake := &fakeRasterizer{delay: time.Second}
	r := Raster{Rasterizer: fake, InitialBackoff: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Export(ctx, newResume(t), resolve(t, "creative"))

	var timeout *TimeoutError
	assert.ErrorAs(t, err, &timeout)
}

func TestRaster_NoRasterizer(t *testing.T) {
	_, err := Raster{}.Export(context.Background(), newResume(t), resolve(t, "creative"))

	var failure *FailureError
	assert.ErrorAs(t, err, &failure)
}

func TestImagePDF(t *testing.T) {
	data, err := ImagePDF(testPNG(200, 283))
	require.NoError(t, err)

	pages, err := Verify(data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	_, err = ImagePDF([]byte("not a png"))
	var failure *FailureError
	assert.ErrorAs(t, err, &failure)
}
