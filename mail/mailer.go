package mail

// go generate: mockery --name Mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendTimeout bounds a single mail-provider call. Notification sends must not
// hold a request open longer than this.
const SendTimeout = 8 * time.Second

// Mailer sends transactional email. Handlers decide per call site whether a
// failure is fatal: registration confirmations are best-effort, login codes
// are not.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, plainText, htmlContent string) error
}

type sendgridMailer struct {
	apiKey    string
	fromName  string
	fromEmail string
}

// NewSendgridMailer returns a Mailer backed by the SendGrid v3 API
func NewSendgridMailer(apiKey, fromName, fromEmail string) Mailer {
	return &sendgridMailer{
		apiKey:    apiKey,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (m *sendgridMailer) Send(ctx context.Context, toEmail, subject, plainText, htmlContent string) error {
	if m.apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY not set, cannot send email")
	}

	from := sgmail.NewEmail(m.fromName, m.fromEmail)
	to := sgmail.NewEmail("", toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d: %s", response.StatusCode, response.Body)
	}

	zap.S().Infow("email sent",
		"to", toEmail,
		"subject", subject,
		"statusCode", response.StatusCode,
	)
	return nil
}
