// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/models"
)

// Mailer delivers one message. html is optional.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type MailgunMailer struct {
	client *mg.MailgunImpl
	sender string
}

func NewMailgunMailer(cfg config.EmailConfig) *MailgunMailer {
	return &MailgunMailer{
		client: mg.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		sender: cfg.Sender,
	}
}

func (m *MailgunMailer) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// LogMailer is used when no mail provider is configured.
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, text, html string) error {
	m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email not sent, no mail provider configured")
	return nil
}

// NewMailer picks Mailgun when it is configured.
func NewMailer(cfg config.EmailConfig, log *logrus.Logger) Mailer {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		return NewLogMailer(log)
	}
	return NewMailgunMailer(cfg)
}

type NotificationService struct {
	mailer   Mailer
	frontend config.FrontendConfig
	resetTTL time.Duration
	log      *logrus.Logger
}

type emailTemplate struct {
	Subject string
	Text    string
	HTML    *template.Template
}

var emailTemplates = map[string]emailTemplate{
	"password_reset": {
		Subject: "Reset your password",
		Text:    "Use this link to choose a new password: %s",
		HTML: template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>We received a request to reset your password. The link expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset password</a>
	<p>If you did not ask for this you can ignore this email.</p>
</body>
</html>`)),
	},
	"purchase_receipt": {
		Subject: "Your purchase receipt",
		Text:    "Ticket %s",
		HTML: template.Must(template.New("purchase_receipt").Parse(`<!DOCTYPE html>
<html>
<body>
	<h2>Thanks for your purchase!</h2>
	<p>Ticket <strong>{{.Code}}</strong>, total {{printf "%.2f" .Amount}}.</p>
	<ul>
	{{range .Purchased}}<li>{{.Product}} x {{.Quantity}}</li>{{end}}
	</ul>
	{{if .NotPurchased}}<p>Some products could not be purchased and remain in your cart:</p>
	<ul>
	{{range .NotPurchased}}<li>{{.Product}} x {{.Quantity}} ({{.Reason}})</li>{{end}}
	</ul>{{end}}
</body>
</html>`)),
	},
}

func NewNotificationService(mailer Mailer, frontend config.FrontendConfig, resetTTL time.Duration, log *logrus.Logger) *NotificationService {
	return &NotificationService{mailer: mailer, frontend: frontend, resetTTL: resetTTL, log: log}
}

func (s *NotificationService) ResetURL(token string) string {
	return fmt.Sprintf("%s%s?token=%s", s.frontend.BaseURL, s.frontend.ResetPassPath, token)
}

func (s *NotificationService) SendPasswordResetEmail(ctx context.Context, user *models.User, token string) error {
	tpl := emailTemplates["password_reset"]
	resetURL := s.ResetURL(token)

	name := user.FirstName
	if name == "" {
		name = user.Email
	}
	body, err := render(tpl.HTML, map[string]interface{}{
		"Name":      name,
		"ResetURL":  resetURL,
		"ExpiresIn": s.resetTTL.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return s.mailer.Send(ctx, user.Email, tpl.Subject, fmt.Sprintf(tpl.Text, resetURL), body)
}

func (s *NotificationService) SendPurchaseReceipt(ctx context.Context, ticket *models.Ticket, settlement *models.Settlement) error {
	tpl := emailTemplates["purchase_receipt"]
	body, err := render(tpl.HTML, map[string]interface{}{
		"Code":         ticket.Code,
		"Amount":       ticket.Amount,
		"Purchased":    settlement.PurchasedItems,
		"NotPurchased": settlement.NotPurchasedItems,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return s.mailer.Send(ctx, ticket.Purchaser, tpl.Subject, fmt.Sprintf(tpl.Text, ticket.Code), body)
}

// SendAsync delivers in the background and only logs failures.
func (s *NotificationService) SendAsync(kind string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.log.WithError(err).WithField("email", kind).Warn("Failed to send email")
		}
	}()
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
