package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"go.uber.org/zap"
)

// SMTPSink delivers messages over plain SMTP. The channel target is the
// recipient address.
type SMTPSink struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger *zap.Logger
}

func NewSMTPSink(host string, port int, user, pass, from string, logger *zap.Logger) *SMTPSink {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPSink{
		addr:   fmt.Sprintf("%s:%d", host, port),
		from:   from,
		auth:   auth,
		send:   smtp.SendMail,
		logger: logger,
	}
}

func (s *SMTPSink) Kind() domain.ChannelKind { return domain.ChannelEmail }

func (s *SMTPSink) Send(ctx context.Context, target string, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", target)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	if err := s.send(s.addr, s.auth, s.from, []string{target}, []byte(b.String())); err != nil {
		s.logger.Warn("smtp delivery failed", zap.Uint("alert_id", msg.AlertID), zap.Error(err))
		return err
	}
	return nil
}
