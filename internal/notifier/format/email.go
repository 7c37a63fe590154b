package format

import (
	"bytes"
	_ "embed"
	"html"
	"html/template"
	"strings"

	"checkinbot/internal/report"
)

//go:embed assets/email.html
var emailTemplateText string

var emailTemplate = template.Must(template.New("email").Parse(emailTemplateText))

// EmailHTML renders the report into the email template. background is an
// optional decorative image URL; empty renders the plain layout.
func EmailHTML(status report.Status, msg, background string) (string, error) {
	body := strings.ReplaceAll(html.EscapeString(strings.ReplaceAll(msg, "\r\n", "\n")), "\n", "<br/>")
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Title      string
		Body       template.HTML
		Background string
	}{
		Title:      Title(status),
		Body:       template.HTML(body),
		Background: strings.TrimSpace(background),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
