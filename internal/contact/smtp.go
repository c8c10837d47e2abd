package contact

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPRelay mails the form to a fixed recipient.
type SMTPRelay struct {
	Host     string
	Port     string
	Username string
	Password string
	To       string

	// sendMail is smtp.SendMail outside tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPRelay returns a relay authenticating with PLAIN auth.
func NewSMTPRelay(host, port, username, password, to string) *SMTPRelay {
	return &SMTPRelay{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		To:       to,
		sendMail: smtp.SendMail,
	}
}

func (r *SMTPRelay) Send(ctx context.Context, f Form) error {
	if r.Username == "" || r.Password == "" {
		return fmt.Errorf("%w: SMTP credentials not configured", ErrRelay)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRelay, err)
	}

	send := r.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	auth := smtp.PlainAuth("", r.Username, r.Password, r.Host)
	addr := net.JoinHostPort(r.Host, r.Port)
	if err := send(addr, auth, r.Username, []string{r.To}, r.compose(f)); err != nil {
		return fmt.Errorf("%w: %v", ErrRelay, err)
	}
	return nil
}

func (r *SMTPRelay) compose(f Form) []byte {
	var b strings.Builder
	b.WriteString("To: " + r.To + "\r\n")
	b.WriteString("Subject: Portfolio Contact: " + headerSafe(f.Name) + "\r\n")
	b.WriteString("From: " + r.Username + "\r\n")
	b.WriteString("Reply-To: " + headerSafe(f.Email) + "\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "New contact form submission from your portfolio:\r\n\r\nName: %s\r\nEmail: %s\r\nMessage:\r\n%s\r\n\r\n---\r\nSent from your portfolio contact form\r\n",
		f.Name, f.Email, f.Message)
	return []byte(b.String())
}

// headerSafe strips line breaks so form input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
