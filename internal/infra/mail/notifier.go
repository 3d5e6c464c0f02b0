package mail

import (
	"context"
	"fmt"

	"storefront/internal/usecase"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// dialer is the part of *gomail.Dialer the notifier uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain text mail through an SMTP relay.
type SMTPNotifier struct {
	dialer dialer
}

func NewSMTPNotifier(host string, port int, user, password string) *SMTPNotifier {
	return &SMTPNotifier{dialer: gomail.NewDialer(host, port, user, password)}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg usecase.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogNotifier only logs. Used when no SMTP host is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{log: logger.With(zap.String("component", "notifier"))}
}

func (n *LogNotifier) Send(ctx context.Context, msg usecase.Message) error {
	n.log.Info("notification",
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
