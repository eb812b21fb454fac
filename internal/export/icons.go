package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/jonathan/resume-studio/internal/layout"
)

// iconOutline is an icon compiled to stroke paths in viewBox units
type iconOutline struct {
	viewBox   float64
	lineWidth float64
	paths     []rasterx.Path
}

// compileIcon parses the icon's SVG markup into paths. Circles, rounded
// rectangles and arcs come back as bezier segments.
func compileIcon(icon layout.Icon) (*iconOutline, error) {
	svg, err := layout.IconSVG(icon, 24, "#000000")
	if err != nil {
		return nil, err
	}
	parsed, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	if parsed.ViewBox.W <= 0 || len(parsed.SVGPaths) == 0 {
		return nil, fmt.Errorf("icon %q has no outline", icon)
	}

	out := &iconOutline{viewBox: parsed.ViewBox.W}
	for _, p := range parsed.SVGPaths {
		out.paths = append(out.paths, p.Path)
		out.lineWidth = max(out.lineWidth, p.LineWidth)
	}
	return out, nil
}

// stroke draws the outline as PDF path operators in a size by size box at
// (x, y). Line cap and join are left at the PDF defaults afterwards.
func (o *iconOutline) stroke(pdf *fpdf.Fpdf, x, y, size float64, c layout.Color) error {
	s := size / o.viewBox
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	pdf.SetLineWidth(o.lineWidth * s)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	defer func() {
		pdf.SetLineCapStyle("butt")
		pdf.SetLineJoinStyle("miter")
	}()

	for _, path := range o.paths {
		px := func(i int) float64 { return x + float64(path[i])/64*s }
		py := func(i int) float64 { return y + float64(path[i])/64*s }
		for i := 0; i < len(path); {
			switch rasterx.PathCommand(path[i]) {
			case rasterx.PathMoveTo:
				pdf.MoveTo(px(i+1), py(i+2))
				i += 3
			case rasterx.PathLineTo:
				pdf.LineTo(px(i+1), py(i+2))
				i += 3
			case rasterx.PathQuadTo:
				pdf.CurveTo(px(i+1), py(i+2), px(i+3), py(i+4))
				i += 5
			case rasterx.PathCubicTo:
				pdf.CurveBezierCubicTo(px(i+1), py(i+2), px(i+3), py(i+4), px(i+5), py(i+6))
				i += 7
			case rasterx.PathClose:
				pdf.ClosePath()
				i++
			default:
				return fmt.Errorf("unknown path command %d", path[i])
			}
		}
		pdf.DrawPath("D")
	}
	return nil
}

// rasterizeSVG draws SVG markup into a px by px PNG with a transparent background
func rasterizeSVG(svg string, px int) ([]byte, error) {
	if px <= 0 {
		return nil, fmt.Errorf("invalid icon size %d", px)
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(px), float64(px))

	img := image.NewRGBA(image.Rect(0, 0, px, px))
	scanner := rasterx.NewScannerGV(px, px, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(px, px, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
