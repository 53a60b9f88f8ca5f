package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateData contains all the fields available for email template rendering
type TemplateData struct {
	Greeting      string // Dynamic greeting based on recipient count
	RunID         string
	ShortRunID    string
	InputDir      string
	DateFormatted string // e.g., "10/19/2026 14:05"
	Total         int
	Succeeded     int
	Failed        int
	Files         []FileLine
	ResultsURL    string
	SenderName    string
}

// EmailTemplate contains the templates for rendering emails
type EmailTemplate struct {
	SubjectFormat string
	PlainText     string
	HTML          string
}

// DefaultTemplate is the standard batch summary template
var DefaultTemplate = EmailTemplate{
	SubjectFormat: "Transcription batch {{.ShortRunID}}: {{.Succeeded}}/{{.Total}} succeeded",
	PlainText: `{{.Greeting}}

The batch for {{.InputDir}} finished on {{.DateFormatted}}.
{{.Succeeded}} of {{.Total}} file(s) were transcribed and translated{{if .Failed}}, {{.Failed}} failed{{end}}.
{{range .Files}}
- {{.Name}}: {{.Status}}{{if .Detail}} ({{.Detail}}){{end}}{{if .Link}} {{.Link}}{{end}}{{end}}
{{if .ResultsURL}}
All results: {{.ResultsURL}}
{{end}}
Thanks!
~{{.SenderName}}`,
	HTML: `<div dir="ltr">{{.Greeting}}<br><br>
The batch for <code>{{.InputDir}}</code> finished on {{.DateFormatted}}.<br>
{{.Succeeded}} of {{.Total}} file(s) were transcribed and translated{{if .Failed}}, <b>{{.Failed}} failed</b>{{end}}.<br>
<ul>{{range .Files}}
<li>{{if .Link}}<a href="{{.Link}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}: {{.Status}}{{if .Detail}} <i>({{.Detail}})</i>{{end}}</li>{{end}}
</ul>{{if .ResultsURL}}
<a href="{{.ResultsURL}}">All results</a><br>{{end}}<br>
Thanks!<br>
~{{.SenderName}}</div>`,
}

// FormatGreeting creates an appropriate greeting based on number of recipients
// 1 recipient: "Dear John,"
// 2 recipients: "Dear John & Jane,"
// 3+ recipients: "Hey Everyone!"
func FormatGreeting(recipients []Recipient) string {
	switch len(recipients) {
	case 0:
		return "Hello,"
	case 1:
		return fmt.Sprintf("Dear %s,", getFirstName(recipients[0].Name))
	case 2:
		return fmt.Sprintf("Dear %s & %s,", getFirstName(recipients[0].Name), getFirstName(recipients[1].Name))
	default:
		return "Hey Everyone!"
	}
}

// getFirstName extracts the first name from a full name
func getFirstName(fullName string) string {
	if fullName == "" {
		return "Friend"
	}
	for i, c := range fullName {
		if c == ' ' {
			return fullName[:i]
		}
	}
	return fullName
}

// NewTemplateData builds template data from a request
func NewTemplateData(req *EmailRequest) TemplateData {
	short := req.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	return TemplateData{
		Greeting:      FormatGreeting(req.To),
		RunID:         req.RunID,
		ShortRunID:    short,
		InputDir:      req.InputDir,
		DateFormatted: req.FinishedAt.Format("01/02/2006 15:04"),
		Total:         req.Total,
		Succeeded:     req.Succeeded,
		Failed:        req.Failed,
		Files:         req.Files,
		ResultsURL:    req.ResultsURL,
		SenderName:    req.SenderName,
	}
}

// RenderSubject renders the email subject using the template
func (t *EmailTemplate) RenderSubject(data TemplateData) (string, error) {
	return renderTemplate("subject", t.SubjectFormat, data)
}

// RenderPlainText renders the plain text email body
func (t *EmailTemplate) RenderPlainText(data TemplateData) (string, error) {
	return renderTemplate("plaintext", t.PlainText, data)
}

// RenderHTML renders the HTML email body
func (t *EmailTemplate) RenderHTML(data TemplateData) (string, error) {
	return renderTemplate("html", t.HTML, data)
}

func renderTemplate(name, tmplStr string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
