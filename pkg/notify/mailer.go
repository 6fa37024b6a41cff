package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"ytdigest/pkg/config"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
)

// subjectPrefix leads every summary email subject
const subjectPrefix = "🧠 New YouTube Video Summary - "

// Notifier delivers a finished summary
type Notifier interface {
	Notify(ctx context.Context, summary, videoTitle string) error
}

// Mailer sends summaries as plain-text email over implicit TLS
type Mailer struct {
	from   string
	to     string
	client *mail.Client
	logger logger.Logger
}

// Subject returns the email subject for a video title
func Subject(videoTitle string) string {
	return subjectPrefix + videoTitle
}

// NewMailer builds an SMTPS client authenticating as cfg.From
func NewMailer(cfg *config.EmailConfig, log logger.Logger) (*Mailer, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.From),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &Mailer{
		from:   cfg.From,
		to:     cfg.To,
		client: client,
		logger: log,
	}, nil
}

// Notify emails the summary to the configured recipient
func (m *Mailer) Notify(ctx context.Context, summary, videoTitle string) error {
	msg, err := m.buildMessage(summary, videoTitle)
	if err != nil {
		return errs.New(errs.ErrorTypeDelivery, "build message", err)
	}

	m.logger.DebugWithFields("sending summary email", map[string]interface{}{
		"to":      m.to,
		"subject": Subject(videoTitle),
	})

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errs.New(errs.ErrorTypeDelivery, "send email", err)
	}
	return nil
}

func (m *Mailer) buildMessage(summary, videoTitle string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(m.to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.to, err)
	}
	msg.Subject(Subject(videoTitle))
	msg.SetBodyString(mail.TypeTextPlain, summary)
	return msg, nil
}
