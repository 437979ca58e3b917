package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
)

const appName = "Startup Village County"

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`<p>Hello {{.Name}},</p><p>Thank you for registering with ` + appName + `. Your account is pending review; we will email you once an administrator has approved it.</p>`))
	approvedTmpl = template.Must(template.New("approved").Parse(
		`<p>Hello {{.Name}},</p><p>Your ` + appName + ` account has been approved. You can now sign in.</p>`))
	rejectedTmpl = template.Must(template.New("rejected").Parse(
		`<p>Hello {{.Name}},</p><p>We are sorry, your ` + appName + ` registration was not approved.</p>{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`))
)

// Mailer renders the registration workflow mails and hands them to a Sender.
type Mailer struct {
	sender  Sender
	timeout time.Duration
}

func NewMailer(sender Sender, timeout time.Duration) *Mailer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Mailer{sender: sender, timeout: timeout}
}

func (m *Mailer) SendWelcome(ctx context.Context, user *domain.User) error {
	return m.send(ctx, user.Email, "Welcome to "+appName, welcomeTmpl, map[string]string{"Name": user.Name},
		fmt.Sprintf("Hello %s, thank you for registering. Your account is pending approval.", user.Name))
}

func (m *Mailer) SendApproved(ctx context.Context, user *domain.User) error {
	return m.send(ctx, user.Email, "Your account has been approved", approvedTmpl, map[string]string{"Name": user.Name},
		fmt.Sprintf("Hello %s, your account has been approved. You can now sign in.", user.Name))
}

func (m *Mailer) SendRejected(ctx context.Context, user *domain.User, reason string) error {
	text := fmt.Sprintf("Hello %s, your registration was not approved.", user.Name)
	if reason != "" {
		text += " Reason: " + reason
	}
	return m.send(ctx, user.Email, "Your registration was not approved", rejectedTmpl,
		map[string]string{"Name": user.Name, "Reason": reason}, text)
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data any, text string) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s mail: %w", tmpl.Name(), err)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.sender.Send(ctx, []string{to}, subject, body.String(), text)
}
