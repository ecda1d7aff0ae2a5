package mailer

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(m Mail) error
}

type SMTPSender struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (s *SMTPSender) Send(m Mail) error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("mail %q has no recipient", m.Subject)
	}
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	// Local relays (mailhog, postfix on localhost) accept unauthenticated mail.
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	return smtp.SendMail(addr, auth, s.From, []string{m.To}, Build(s.From, m))
}

// Build renders m as a plain-text RFC 5322 message. Line breaks in header
// values are folded to spaces and a non-ASCII subject is Q-encoded.
func Build(from string, m Mail) []byte {
	return []byte("From: " + headerValue(from) + "\r\n" +
		"To: " + headerValue(m.To) + "\r\n" +
		"Subject: " + mime.QEncoding.Encode("utf-8", headerValue(m.Subject)) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		m.Body)
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}
