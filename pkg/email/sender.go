// Package email delivers transactional mail through the Resend API.
package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers email messages.
type Sender interface {
	// Send delivers the message and returns the provider message id.
	Send(ctx context.Context, msg *Message) (string, error)
}

type resendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewSender creates a Resend-backed sender. All mail goes out from the
// configured from address.
func NewSender(apiKey, from string, logger *zap.Logger) Sender {
	return &resendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger.Named("email"),
	}
}

func (s *resendSender) Send(ctx context.Context, msg *Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("message_id", sent.Id),
		zap.Int("recipients", len(msg.To)))

	return sent.Id, nil
}
