package templates

import (
	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/types"
)

// Placeholder text shown for empty fields
const (
	PlaceholderName    = "Your Name"
	PlaceholderTitle   = "Professional Title"
	PlaceholderEmail   = "email@example.com"
	PlaceholderPhone   = "123-456-7890"
	PlaceholderContent = "No content added yet"
	SummaryHeading     = "Professional Summary"
)

const (
	contactIconSize      = 10.5
	sectionIconSize      = 13.5
	elegantSectionIcon   = 15
	bodyFontSize         = 12
	bodyLineHeight       = 1.625
	sectionHeadingSize   = 15
	sectionSpacing       = 18
	elegantSectionMargin = 24
)

var (
	textColor  = layout.MustHex("#1f2937")
	bodyColor  = layout.MustHex("#374151")
	mutedColor = layout.MustHex("#4b5563")
)

type headerStyle int

const (
	headerBand headerStyle = iota
	headerCentered
)

type theme struct {
	header       headerStyle
	font         layout.FontFamily
	gradientTo   layout.Color
	headerRadius float64
}

func (t Template) headerPaint() layout.Paint {
	if t.theme.gradientTo != (layout.Color{}) {
		return layout.LinearGradient(t.PrimaryColor, t.theme.gradientTo)
	}
	return layout.Solid(t.PrimaryColor)
}

func (t Template) text(role, field, value, placeholder string, st layout.Style) *layout.Node {
	st.FontFamily = t.theme.font
	n := &layout.Node{Kind: layout.KindText, Role: role, Field: field, Text: value, Style: st}
	if value == "" {
		n.Text = placeholder
		n.Placeholder = true
	}
	return n
}

func (t Template) resume(r *types.Resume) (*layout.Node, layout.Page) {
	page := layout.Page{
		Width:  layout.A4Width,
		Height: layout.A4Height,
		Margin: layout.Edges{Top: 0, Right: 0, Bottom: 36, Left: 0},
	}
	root := &layout.Node{Kind: layout.KindPage, Role: "page", Style: layout.Style{
		Background: layout.Solid(layout.White),
		Color:      t.TextColor,
		FontFamily: t.theme.font,
	}}

	if t.theme.header == headerCentered {
		root.Children = t.centeredResume(r)
	} else {
		root.Children = t.bandResume(r)
	}
	return root, page
}

func (t Template) contactRow(r *types.Resume, color layout.Color, align layout.Align, gap float64) *layout.Node {
	st := layout.Style{Color: color, FontSize: 10.5, LineHeight: 1.4}
	row := &layout.Node{Kind: layout.KindRow, Role: "contact", Style: layout.Style{Align: align, Gap: gap}}

	item := func(icon layout.Icon, field, value, placeholder string) *layout.Node {
		return &layout.Node{Kind: layout.KindRow, Role: "contact-item", Style: layout.Style{Gap: 3}, Children: []*layout.Node{
			{Kind: layout.KindIcon, Icon: icon, Style: layout.Style{Color: color, Width: contactIconSize}},
			t.text("contact-"+field, field, value, placeholder, st),
		}}
	}

	row.Children = append(row.Children,
		item(layout.IconMail, "email", r.Email, PlaceholderEmail),
		item(layout.IconPhone, "phone", r.Phone, PlaceholderPhone),
	)
	if r.Location != "" {
		row.Children = append(row.Children, item(layout.IconMapPin, "location", r.Location, ""))
	}
	return row
}

// bandResume is a coloured header band over a padded body
func (t Template) bandResume(r *types.Resume) []*layout.Node {
	header := &layout.Node{Kind: layout.KindBlock, Role: "header", Style: layout.Style{
		Background: t.headerPaint(),
		Padding:    layout.Uniform(24),
		Radius:     t.theme.headerRadius,
	}}
	header.Children = []*layout.Node{
		t.text("name", "fullName", r.FullName, PlaceholderName, layout.Style{
			Color: layout.White, FontSize: 22.5, Bold: true, LineHeight: 1.2, MarginBottom: 6,
		}),
		t.text("title", "professionalTitle", r.ProfessionalTitle, PlaceholderTitle, layout.Style{
			Color: layout.White, FontSize: 13.5, LineHeight: 1.4, MarginBottom: 9,
		}),
		t.contactRow(r, layout.White, layout.AlignLeft, 12),
	}

	body := &layout.Node{Kind: layout.KindBlock, Role: "body", Style: layout.Style{Padding: layout.Uniform(24)}}
	heading := layout.Style{
		Color: t.TextColor, FontSize: sectionHeadingSize, Bold: true, LineHeight: 1.4,
		Padding:      layout.Edges{Bottom: 3},
		BorderBottom: layout.Border{Width: 1.5, Color: t.AccentColor},
		MarginBottom: 9,
	}
	content := layout.Style{Color: bodyColor, FontSize: bodyFontSize, LineHeight: bodyLineHeight}

	if r.Summary != "" {
		body.Children = append(body.Children, &layout.Node{
			Kind: layout.KindBlock, Role: "summary", Style: layout.Style{MarginBottom: sectionSpacing},
			Children: []*layout.Node{
				{Kind: layout.KindRow, Role: "section-heading", Style: heading, Children: []*layout.Node{
					t.text("section-title", "", SummaryHeading, "", layout.Style{Color: t.TextColor, FontSize: sectionHeadingSize, Bold: true}),
				}},
				t.text("summary", "summary", r.Summary, "", content),
			},
		})
	}

	for _, s := range r.Sections {
		body.Children = append(body.Children, t.sectionNode(s, heading, content, sectionIconSize, layout.AlignLeft, sectionSpacing, true))
	}

	return []*layout.Node{header, body}
}

// centeredResume is a light, centred header with a short accent bar
func (t Template) centeredResume(r *types.Resume) []*layout.Node {
	header := &layout.Node{Kind: layout.KindBlock, Role: "header", Style: layout.Style{
		Align: layout.AlignCenter, MarginBottom: 18,
	}}
	header.Children = []*layout.Node{
		t.text("name", "fullName", r.FullName, PlaceholderName, layout.Style{
			Color: t.TextColor, FontSize: 27, Align: layout.AlignCenter, LineHeight: 1.2, MarginBottom: 6,
		}),
		{Kind: layout.KindBlock, Role: "accent-bar", Style: layout.Style{
			Background: layout.Solid(t.PrimaryColor), Width: 60, Height: 3, Align: layout.AlignCenter, MarginBottom: 9,
		}},
		t.text("title", "professionalTitle", r.ProfessionalTitle, PlaceholderTitle, layout.Style{
			Color: mutedColor, FontSize: 13.5, Align: layout.AlignCenter, LineHeight: 1.4, MarginBottom: 12,
		}),
		t.contactRow(r, mutedColor, layout.AlignCenter, 18),
	}

	body := &layout.Node{Kind: layout.KindBlock, Role: "body", Style: layout.Style{Padding: layout.Uniform(24)}}
	body.Children = append(body.Children, header)

	heading := layout.Style{
		Color: t.TextColor, FontSize: 18, Align: layout.AlignCenter, LineHeight: 1.4, MarginBottom: 12,
	}
	content := layout.Style{Color: bodyColor, FontSize: bodyFontSize, LineHeight: bodyLineHeight}

	if r.Summary != "" {
		summary := content
		summary.Italic = true
		summary.Align = layout.AlignCenter
		body.Children = append(body.Children, &layout.Node{
			Kind: layout.KindBlock, Role: "summary", Style: layout.Style{MarginBottom: elegantSectionMargin},
			Children: []*layout.Node{
				{Kind: layout.KindRow, Role: "section-heading", Style: heading, Children: []*layout.Node{
					t.text("section-title", "", SummaryHeading, "", layout.Style{Color: t.TextColor, FontSize: 18}),
				}},
				t.text("summary", "summary", r.Summary, "", summary),
			},
		})
	}

	for _, s := range r.Sections {
		body.Children = append(body.Children, t.sectionNode(s, heading, content, elegantSectionIcon, layout.AlignCenter, elegantSectionMargin, false))
	}

	return []*layout.Node{body}
}

func (t Template) sectionNode(s types.Section, heading, content layout.Style, iconSize float64, align layout.Align, spacing float64, bold bool) *layout.Node {
	heading.Align = align
	heading.Gap = 6

	title := t.text("section-title", "title", s.Title, "", layout.Style{Color: t.TextColor, FontSize: heading.FontSize, Bold: bold})
	title.SectionID = s.ID
	body := t.text("section-content", "content", s.Content, PlaceholderContent, content)
	body.SectionID = s.ID
	icon := &layout.Node{
		Kind: layout.KindIcon, Role: "section-icon", SectionID: s.ID,
		Icon: layout.IconFor(s.Kind), Style: layout.Style{Color: t.TextColor, Width: iconSize},
	}

	return &layout.Node{
		Kind: layout.KindBlock, Role: "section", SectionID: s.ID,
		Style: layout.Style{MarginBottom: spacing},
		Children: []*layout.Node{
			{Kind: layout.KindRow, Role: "section-heading", SectionID: s.ID, Style: heading, Children: []*layout.Node{icon, title}},
			body,
		},
	}
}
