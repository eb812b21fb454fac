package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/templates"
)

// DefaultTimeout bounds a single export
const DefaultTimeout = 60 * time.Second

// Sink receives finished exports for archiving
type Sink interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// Options configures an Engine
type Options struct {
	// Strategy is the configured default; empty defers to the template's preference
	Strategy templates.Strategy
	// Rasterizer enables the raster strategy
	Rasterizer     Rasterizer
	RasterAttempts int
	Timeout        time.Duration
	// Sink archives successful exports when set
	Sink Sink
	Now  func() time.Time
}

// Engine selects a template and a strategy for each request and runs it
type Engine struct {
	registry   *templates.Registry
	strategies map[templates.Strategy]Strategy
	strategy   templates.Strategy
	timeout    time.Duration
	sink       Sink
	now        func() time.Time
}

// NewEngine creates an engine over the given template registry
func NewEngine(registry *templates.Registry, opts Options) *Engine {
	e := &Engine{
		registry:   registry,
		strategies: map[templates.Strategy]Strategy{templates.StrategyVector: Vector{}},
		strategy:   opts.Strategy,
		timeout:    opts.Timeout,
		sink:       opts.Sink,
		now:        opts.Now,
	}
	if opts.Rasterizer != nil {
		e.strategies[templates.StrategyRaster] = Raster{Rasterizer: opts.Rasterizer, MaxAttempts: opts.RasterAttempts}
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Timeout returns the per-export deadline
func (e *Engine) Timeout() time.Duration {
	return e.timeout
}

// selectStrategy picks the request override, then the configured default, then
// the template's preference. A raster choice without a rasterizer falls back
// to vector.
func (e *Engine) selectStrategy(requested templates.Strategy, tpl templates.Template) (Strategy, []string) {
	name := requested
	if name == "" {
		name = e.strategy
	}
	if name == "" {
		name = tpl.PreferredStrategy
	}
	if s, ok := e.strategies[name]; ok {
		return s, nil
	}
	return e.strategies[templates.StrategyVector],
		[]string{fmt.Sprintf("%s export is not available, used vector export instead", name)}
}

// Run performs one export synchronously, bounded by the engine timeout
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Format != "" && req.Format != FormatPDF {
		return nil, &UnsupportedFormatError{Format: req.Format}
	}
	if _, err := ParseStrategy(string(req.Strategy)); err != nil {
		return nil, err
	}
	if err := document.Validate(req.Document); err != nil {
		return nil, err
	}

	var warnings []string
	tpl, found := e.registry.ResolveOrDefault(req.TemplateID)
	if !found && req.TemplateID != "" {
		warnings = append(warnings, fmt.Sprintf("unknown template %q, used %q instead", req.TemplateID, tpl.ID))
	}

	strategy, w := e.selectStrategy(req.Strategy, tpl)
	warnings = append(warnings, w...)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := e.now()
	res, err := strategy.Export(runCtx, req.Document, tpl)
	if err != nil {
		var timeout *TimeoutError
		if !errors.As(err, &timeout) && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = &TimeoutError{Message: fmt.Sprintf("%s export exceeded %s", strategy.Name(), e.timeout), Cause: err}
		}
		log.Printf("[export] %s export of template %q failed: %v", strategy.Name(), tpl.ID, err)
		return nil, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	log.Printf("[export] %s export of template %q finished in %s", strategy.Name(), tpl.ID, e.now().Sub(start).Round(time.Millisecond))

	e.archive(ctx, req.Key, res)
	return res, nil
}

// archive stores a finished export. Failures are logged and never fail the export.
func (e *Engine) archive(ctx context.Context, key string, res *Result) {
	if e.sink == nil || key == "" {
		return
	}
	name := path.Join("exports", key, e.now().UTC().Format("20060102T150405.000Z")+".pdf")
	if err := e.sink.Put(context.WithoutCancel(ctx), name, "application/pdf", res.Bytes); err != nil {
		log.Printf("[export] failed to archive %s: %v", name, err)
		return
	}
	log.Printf("[export] archived %s", name)
}
