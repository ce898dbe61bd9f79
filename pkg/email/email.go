package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
)

// Transport delivers one rendered email. Implementations must return a
// provider message id on success so the send can be traced in the log.
type Transport interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// SMTPTransport sends mail through a plain SMTP relay.
type SMTPTransport struct {
	Host       string
	Port       string
	Sender     string
	SenderName string
	Password   string
}

// NewSMTPTransport builds a transport from explicit settings, constructed
// once at startup and injected where mail is sent.
func NewSMTPTransport(host, port, sender, senderName, password string) *SMTPTransport {
	return &SMTPTransport{
		Host:       host,
		Port:       port,
		Sender:     sender,
		SenderName: senderName,
		Password:   password,
	}
}

// Send delivers an HTML email using SMTP. The SMTP protocol assigns no
// message id, so a local one is generated for the send log.
func (t *SMTPTransport) Send(ctx context.Context, to, subject, html string) (string, error) {
	auth := smtp.PlainAuth("", t.Sender, t.Password, t.Host)

	msg := []byte("From: " + t.SenderName + " <" + t.Sender + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + html + "\r\n")

	address := t.Host + ":" + t.Port

	if err := smtp.SendMail(address, auth, t.Sender, []string{to}, msg); err != nil {
		return "", fmt.Errorf("failed to send email: %v", err)
	}
	return uuid.NewString(), nil
}
