package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages to users. Implementations are fallible and may be
// slow; callers must treat a returned error as "nothing was delivered".
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through a single SMTP relay.
type SMTPMailer struct {
	addr string // host:port
	host string
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer for the given relay. user may be empty for
// unauthenticated relays.
func NewSMTPMailer(host, port, user, password, from string) *SMTPMailer {
	m := &SMTPMailer{
		addr: host + ":" + port,
		host: host,
		from: from,
	}
	if user != "" {
		m.auth = smtp.PlainAuth("", user, password, host)
	}
	return m
}

// Send delivers a plain-text message. The context deadline is honoured only
// up to dialing; net/smtp does not support cancellation mid-session.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes messages to the process log instead of sending them.
// Used in development. The body can carry a raw reset token, so this must
// never be wired up in production.
type LogMailer struct{}

// Send logs the message.
func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("mail (dev): to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
