package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-pdf/fpdf"

	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/preview"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

// Rasterizer captures self-contained HTML as a PNG of the given CSS pixel size
type Rasterizer interface {
	Rasterize(ctx context.Context, markup string, width, height int) ([]byte, error)
}

// Raster retry defaults
const (
	DefaultRasterAttempts = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultMaxElapsed     = 20 * time.Second
)

// Raster captures the normalized preview of a document and embeds it as a
// single full-page image
type Raster struct {
	Rasterizer Rasterizer
	// MaxAttempts bounds the number of capture attempts
	MaxAttempts int
	// InitialBackoff is the wait before the first retry; later waits grow exponentially
	InitialBackoff time.Duration
}

// Name implements Strategy
func (Raster) Name() templates.Strategy {
	return templates.StrategyRaster
}

// Export implements Strategy
func (r Raster) Export(ctx context.Context, doc *types.Document, tpl templates.Template) (*Result, error) {
	if r.Rasterizer == nil {
		return nil, &FailureError{Message: "no rasterizer configured"}
	}

	markup, err := preview.HTML(preview.Render(doc, tpl, preview.Options{Mode: preview.ModePreview}))
	if err != nil {
		return nil, &FailureError{Message: "failed to render preview", Cause: err}
	}
	normalized, err := Normalize(markup, preview.IconPixels)
	if err != nil {
		return nil, err
	}

	img, err := r.capture(ctx, normalized)
	if err != nil {
		return nil, err
	}

	data, err := ImagePDF(img)
	if err != nil {
		return nil, err
	}
	pages, err := Verify(data)
	if err != nil {
		return nil, err
	}
	log.Printf("[raster] export of template %q: %d page(s), %d bytes", tpl.ID, pages, len(data))

	return &Result{
		Bytes:      data,
		PageCount:  pages,
		Strategy:   templates.StrategyRaster,
		TemplateID: tpl.ID,
	}, nil
}

func (r Raster) backOff(ctx context.Context) backoff.BackOff {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultRasterAttempts
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = defaultInitialBackoff
	if r.InitialBackoff > 0 {
		eb.InitialInterval = r.InitialBackoff
	}
	eb.MaxInterval = defaultMaxBackoff
	eb.MaxElapsedTime = defaultMaxElapsed
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// capture runs the rasterizer with bounded exponential backoff
func (r Raster) capture(ctx context.Context, markup string) ([]byte, error) {
	var img []byte
	attempt := 0
	op := func() error {
		attempt++
		out, err := r.Rasterizer.Rasterize(ctx, markup, preview.CanvasWidth, preview.CanvasHeight)
		if err == nil {
			_, _, err = image.DecodeConfig(bytes.NewReader(out))
		}
		if err != nil {
			log.Printf("[raster] capture attempt %d failed: %v", attempt, err)
			return err
		}
		img = out
		return nil
	}

	err := backoff.Retry(op, r.backOff(ctx))
	if err == nil {
		return img, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, contextError(fmt.Sprintf("raster capture stopped after %d attempt(s)", attempt), ctxErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, &TimeoutError{Message: "raster capture", Cause: err}
	}
	return nil, &FailureError{Message: fmt.Sprintf("raster capture failed after %d attempt(s)", attempt), Cause: err}
}

// ImagePDF embeds a PNG as one full-bleed A4 page
func ImagePDF(img []byte) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(fixedCreationDate)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("resume-studio", true)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", opts, bytes.NewReader(img))
	pdf.ImageOptions("page", 0, 0, layout.A4Width, layout.A4Height, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, &FailureError{Message: "failed to embed page image", Cause: err}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &FailureError{Message: "failed to write pdf", Cause: err}
	}
	return buf.Bytes(), nil
}
