package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplateReset is the password-reset email template name.
const TemplateReset = "reset_password"

var resetHTML = template.Must(template.New(TemplateReset).Parse(`<html>
<body>
  <p>Hi{{if .Name}} {{.Name}}{{end}},</p>
  <p>We received a request to reset the password for your account.</p>
  <p><a href="{{.ResetURL}}">Reset your password</a></p>
  <p>The link expires in {{.ExpiresIn}}. If you did not request this, you can ignore this email.</p>
</body>
</html>`))

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case TemplateReset:
		var buf bytes.Buffer
		if err = resetHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		subject = "Reset your password"
		text = fmt.Sprintf("Reset your password: %v (expires in %v)", data["ResetURL"], data["ExpiresIn"])
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
