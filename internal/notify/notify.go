// Package notify delivers the summary email.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/wneessen/go-mail"
)

// Message is one outgoing notification.
type Message struct {
	Subject        string
	Body           string // plain text
	To             string
	AttachmentPath string // read from disk and attached as text/plain under this exact name
}

// Sender transmits composed messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer composes messages and hands them to a Sender.
type Mailer struct {
	from   string
	sender Sender
}

// NewMailer creates a mailer sending as from through sender.
func NewMailer(from string, sender Sender) (*Mailer, error) {
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("notify: sender address is required")
	}
	if sender == nil {
		return nil, errors.New("notify: sender is required")
	}
	return &Mailer{from: from, sender: sender}, nil
}

// NewSMTP creates a mailer that submits over implicit TLS with PLAIN auth,
// using the sender address as username and an app password.
func NewSMTP(host string, port int, from, appPassword string) (*Mailer, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(from),
		mail.WithPassword(appPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("notify: create smtp client: %w", err)
	}
	return NewMailer(from, client)
}

// Send composes msg and transmits it once.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	em, err := m.Compose(msg)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSendWithContext(ctx, em); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Compose builds the multipart message: text body plus the attachment.
func (m *Mailer) Compose(msg Message) (*mail.Msg, error) {
	data, err := os.ReadFile(msg.AttachmentPath)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("attachment %s is not valid UTF-8 text", msg.AttachmentPath)
	}

	em := mail.NewMsg()
	if err := em.From(m.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := em.To(msg.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	em.Subject(msg.Subject)
	em.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := em.AttachReader(msg.AttachmentPath, bytes.NewReader(data),
		mail.WithFileContentType(mail.TypeTextPlain)); err != nil {
		return nil, fmt.Errorf("attach %s: %w", msg.AttachmentPath, err)
	}
	return em, nil
}
