package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yigit/admission/internal/app/models"
)

const layout = `{{define "layout"}}<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">{{.AppName}}</h2>
		<p>Dear {{.Event.Name}},</p>
		{{template "content" .}}
		<p>Best regards,<br>{{.AppName}} Team</p>
	</div>
</body>
</html>{{end}}`

var contents = map[Kind]string{
	KindRegistration: `{{define "content"}}
		<p>Thank you for registering. Your username is <strong>{{.Event.Username}}</strong>.</p>
		<p>Please log in and upload your photo, 10th and 12th marksheets and Aadhar card to complete your application.</p>
		{{if .PortalURL}}<p><a href="{{.PortalURL}}">Go to the portal</a></p>{{end}}
	{{end}}`,
	KindStatusUpdate: `{{define "content"}}
		{{if eq .Status "APPROVED"}}
		<p>Congratulations! Your application has been <strong style="color: #2e7d32;">approved</strong>.</p>
		{{else if eq .Status "REJECTED"}}
		<p>We regret to inform you that your application has been <strong style="color: #c62828;">rejected</strong>.</p>
		{{if .Event.Reason}}<p>Reason: {{.Event.Reason}}</p>{{end}}
		{{else if eq .Status "PENDING"}}
		<p>All required documents have been received. Your application is now <strong>under review</strong>.</p>
		{{else}}
		<p>Your application status is now <strong>{{.Status}}</strong>.</p>
		{{end}}
	{{end}}`,
	KindDocumentVerification: `{{define "content"}}
		{{if .Event.Verified}}
		<p>Your document <strong>{{.Event.DocumentType}}</strong> has been verified.</p>
		{{else}}
		<p>Your document <strong>{{.Event.DocumentType}}</strong> could not be verified. Please upload a clearer copy.</p>
		{{end}}
	{{end}}`,
	KindGeneral: `{{define "content"}}<p>{{.Event.Message}}</p>{{end}}`,
}

var templates = func() map[Kind]*template.Template {
	parsed := make(map[Kind]*template.Template, len(contents))
	for kind, content := range contents {
		t := template.Must(template.New(string(kind)).Parse(layout))
		parsed[kind] = template.Must(t.Parse(content))
	}
	return parsed
}()

type templateData struct {
	AppName   string
	PortalURL string
	Status    string
	Event     Event
}

func subjectFor(appName string, ev Event) string {
	switch ev.Kind {
	case KindRegistration:
		return fmt.Sprintf("Registration Successful - %s", appName)
	case KindStatusUpdate:
		switch ev.Status {
		case models.StatusApproved:
			return "Application Approved - Congratulations!"
		case models.StatusRejected:
			return "Application Status Update"
		default:
			return fmt.Sprintf("Application Status: %s", ev.Status)
		}
	case KindDocumentVerification:
		return "Document Verification Update"
	default:
		return ev.Subject
	}
}

func render(appName, portalURL string, ev Event) (subject, body string, err error) {
	t, ok := templates[ev.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", ev.Kind)
	}

	var buf bytes.Buffer
	data := templateData{AppName: appName, PortalURL: portalURL, Status: string(ev.Status), Event: ev}
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", ev.Kind, err)
	}
	return subjectFor(appName, ev), buf.String(), nil
}
