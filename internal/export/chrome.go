package export

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultDeviceScale is the capture resolution multiplier
const DefaultDeviceScale = 2

// ChromeRasterizer captures HTML with a headless Chrome or Chromium.
// Requires a browser to be installed on the system.
type ChromeRasterizer struct {
	// ExecPath overrides browser discovery when set
	ExecPath string
	// Scale is the device scale factor; zero means DefaultDeviceScale
	Scale   float64
	Verbose bool
}

// Rasterize implements Rasterizer. The markup is loaded into a blank page
// without any network access and the viewport is captured.
func (c *ChromeRasterizer) Rasterize(ctx context.Context, markup string, width, height int) ([]byte, error) {
	scale := c.Scale
	if scale <= 0 {
		scale = DefaultDeviceScale
	}
	if c.Verbose {
		log.Printf("[raster] starting headless browser for %dx%d capture at scale %g", width, height, scale)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(height), chromedp.EmulateScale(scale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("browser capture failed: %w", err)
	}

	if c.Verbose {
		log.Printf("[raster] captured %d bytes", len(buf))
	}
	return buf, nil
}
