package export

import (
	"bytes"
	"context"
	"image/png"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-studio/internal/preview"
)

func findBrowser() string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func TestChromeRasterizer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	browser := findBrowser()
	if browser == "" {
		t.Skip("no Chrome or Chromium found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c := &ChromeRasterizer{ExecPath: browser}
	img, err := c.Rasterize(ctx, `<html><body style="margin:0"><p>hello</p></body></html>`, preview.CanvasWidth, preview.CanvasHeight)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, preview.CanvasWidth*DefaultDeviceScale, cfg.Width)
	assert.Equal(t, preview.CanvasHeight*DefaultDeviceScale, cfg.Height)
}
