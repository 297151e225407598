package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/yukikurage/task-analytics-api/internal/config"
	"github.com/yukikurage/task-analytics-api/internal/constants"
	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("reminder has no recipient address")

// SMTPMailer sends reminders through an SMTP relay.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewSMTPMailer creates an SMTPMailer. timeout bounds one delivery attempt
// when the caller's context carries no earlier deadline.
func NewSMTPMailer(cfg config.SMTPConfig, timeout time.Duration, logger *zap.Logger) *SMTPMailer {
	if timeout <= 0 {
		timeout = constants.DefaultEmailTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, timeout: timeout, logger: logger, now: time.Now}
}

// SendDueDateReminder implements Mailer.
func (m *SMTPMailer) SendDueDateReminder(ctx context.Context, r DueDateReminder) error {
	if r.Email == "" {
		return ErrNoRecipient
	}

	var msg bytes.Buffer
	if err := m.compose(&msg, r); err != nil {
		return fmt.Errorf("failed to compose reminder: %w", err)
	}

	if err := m.deliver(ctx, r.Email, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", r.Email, err)
	}
	m.logger.Debug("reminder email sent", zap.String("to", r.Email), zap.String("task", r.TaskTitle))
	return nil
}

func (m *SMTPMailer) compose(buf *bytes.Buffer, r DueDateReminder) error {
	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{{Name: m.cfg.FromName, Address: m.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Name: r.Name, Address: r.Email}})
	h.SetSubject(r.Subject())
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return err
	}

	w, err := mail.CreateSingleInlineWriter(buf, h)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(r.Body())); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (m *SMTPMailer) deliver(ctx context.Context, to string, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
