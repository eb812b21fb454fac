package templates

import (
	"strings"

	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/types"
)

// Cover letter placeholders and fixed wording
const (
	PlaceholderRecipient     = "Hiring Manager"
	PlaceholderCompany       = "Company Name"
	PlaceholderAddress       = "Company Address"
	PlaceholderBody          = "Your cover letter content will appear here..."
	PlaceholderLetterPhone   = "(123) 456-7890"
	PlaceholderSenderAddress = "City, State"
	Closing                  = "Sincerely,"
)

var letterDivider = layout.MustHex("#cccccc")

// Greeting returns the salutation line addressed to the recipient's first name
func Greeting(recipient string) string {
	name := PlaceholderRecipient
	if fields := strings.Fields(recipient); len(fields) > 0 {
		name = fields[0]
	}
	return "Dear " + name + ","
}

func (t Template) coverLetter(c *types.CoverLetter) (*layout.Node, layout.Page) {
	page := layout.Page{Width: layout.A4Width, Height: layout.A4Height, Margin: layout.Uniform(40)}
	root := &layout.Node{Kind: layout.KindPage, Role: "page", Style: layout.Style{
		Background: layout.Solid(layout.White),
		Color:      t.TextColor,
		FontFamily: t.theme.font,
	}}

	align := layout.AlignLeft
	if t.theme.header == headerCentered {
		align = layout.AlignCenter
	}

	body := layout.Style{Color: t.TextColor, FontSize: 11, LineHeight: 1.5}
	small := layout.Style{Color: t.TextColor, FontSize: 10, LineHeight: 1.4}

	header := &layout.Node{Kind: layout.KindBlock, Role: "header", Style: layout.Style{
		Padding:      layout.Edges{Bottom: 10},
		BorderBottom: layout.Border{Width: 1, Color: letterDivider},
		MarginBottom: 20,
	}}
	header.Children = []*layout.Node{
		t.text("name", "senderName", c.Sender.FullName, PlaceholderName, layout.Style{
			Color: t.PrimaryColor, FontSize: 24, Bold: true, Align: align, LineHeight: 1.2, MarginBottom: 5,
		}),
		{Kind: layout.KindRow, Role: "contact", Style: layout.Style{Align: align, Gap: 24}, Children: []*layout.Node{
			t.text("contact-email", "senderEmail", c.Sender.Email, PlaceholderEmail, small),
			t.text("contact-phone", "senderPhone", c.Sender.Phone, PlaceholderLetterPhone, small),
			t.text("contact-location", "senderLocation", c.Sender.Location, PlaceholderSenderAddress, small),
		}},
	}

	date := small
	date.MarginBottom = 20

	recipientLine := body
	recipientLine.MarginBottom = 0
	recipient := &layout.Node{Kind: layout.KindBlock, Role: "recipient", Style: layout.Style{MarginBottom: 20}, Children: []*layout.Node{
		t.text("recipient-name", "recipientName", c.RecipientName, PlaceholderRecipient, recipientLine),
		t.text("recipient-company", "companyName", c.CompanyName, PlaceholderCompany, recipientLine),
		t.text("recipient-address", "companyAddress", c.CompanyAddress, PlaceholderAddress, recipientLine),
	}}

	greeting := body
	greeting.MarginBottom = 10
	content := body
	content.MarginBottom = 15

	root.Children = []*layout.Node{
		header,
		t.text("date", "letterDate", c.LetterDate, "", date),
		recipient,
		t.text("greeting", "", Greeting(c.RecipientName), "", greeting),
		t.text("body", "bodyText", c.BodyText, PlaceholderBody, content),
		{Kind: layout.KindSpacer, Role: "closing-space", Style: layout.Style{Height: 20}},
		t.text("closing", "", Closing, "", body),
		{Kind: layout.KindSpacer, Role: "signature-space", Style: layout.Style{Height: 40}},
		t.text("signature", "senderName", c.Sender.FullName, PlaceholderName, body),
	}
	return root, page
}
