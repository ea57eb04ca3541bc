// Package templates renders the contact notification email.
package templates

import (
	"bytes"
	"html/template"
	"time"
)

// ContactEmailProps is the data shown in the notification.
type ContactEmailProps struct {
	ID          string
	Name        string
	Email       string
	Message     string
	SubmittedAt time.Time
}

var contactTemplate = template.Must(template.New("contact").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>New message from {{.Name}}</title>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.4; background-color: #f4f5f6; margin: 0; padding: 24px;">
    <table role="presentation" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 0 auto; background: #ffffff; border: 1px solid #eaebed; border-radius: 12px; padding: 24px;" width="100%">
      <tr><td>
        <h1 style="font-size: 20px; margin: 0 0 16px;">New contact message</h1>
        <p style="margin: 0 0 8px;"><strong>From:</strong> {{.Name}}{{if .Email}} &lt;{{.Email}}&gt;{{end}}</p>
        <p style="margin: 0 0 16px; color: #6b7280;">{{.SubmittedAt.Format "2006-01-02 15:04 MST"}} &middot; {{.ID}}</p>
        <div style="white-space: pre-wrap; border-left: 3px solid #ec0867; padding-left: 12px;">{{.Message}}</div>
      </td></tr>
    </table>
  </body>
</html>
`))

// GetContactEmail renders the HTML body. Fields are escaped.
func GetContactEmail(props ContactEmailProps) (string, error) {
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, props); err != nil {
		return "", err
	}
	return buf.String(), nil
}
