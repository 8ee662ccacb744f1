// Package mailer sends outbound notification email. Delivery is
// best-effort: transition handlers fan mails out after the state change has
// committed and log failures without surfacing them.
package mailer

import (
	"log/slog"
	"sync"

	"gopkg.in/gomail.v2"

	"github.com/ttifoundation/admission-backend/internal/config"
)

// Mail is one outbound message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers a single mail. The SMTP implementation is below; tests
// substitute a recording fake.
type Notifier interface {
	Send(m Mail) error
}

// SMTP sends via gomail. When the SMTP settings are absent the mailer runs
// in disabled mode and silently skips every send, so local setups work
// without credentials.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(cfg *config.Config) *SMTP {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.MailFrom == "" {
		slog.Warn("mailer not configured, outbound mail disabled")
		return &SMTP{}
	}
	return &SMTP{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

func (s *SMTP) Send(m Mail) error {
	if s.dialer == nil || m.To == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.Body)
	return s.dialer.DialAndSend(msg)
}

// SendBulk fans mails out one goroutine per recipient and waits for all of
// them. Failures are isolated per recipient and only logged; the caller's
// success path never depends on delivery.
func SendBulk(n Notifier, mails []Mail) {
	if len(mails) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, m := range mails {
		wg.Add(1)
		go func(m Mail) {
			defer wg.Done()
			if err := n.Send(m); err != nil {
				slog.Error("mail delivery failed", "to", m.To, "subject", m.Subject, "error", err)
			}
		}(m)
	}
	wg.Wait()
}
