// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"net/smtp"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds the dial and the whole SMTP session.
const DefaultTimeout = 30 * time.Second

// Sender delivers reports to a single recipient. Each Send opens a new
// STARTTLS session, authenticates with PLAIN and sends one message.
type Sender struct {
	Config  Config
	Timeout time.Duration
	Logger  *zap.Logger

	// TLSConfig overrides the client TLS settings. Nil verifies against
	// Config.Host.
	TLSConfig *tls.Config

	Now func() time.Time
}

// NewSender returns a Sender for cfg.
func NewSender(cfg Config, timeout time.Duration, logger *zap.Logger) *Sender {
	return &Sender{Config: cfg, Timeout: timeout, Logger: logger}
}

func (s *Sender) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

func (s *Sender) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Send delivers report under subject.
func (s *Sender) Send(ctx context.Context, subject, report string) error {
	msg, err := buildMessage(s.Config, subject, report, s.now())
	if err != nil {
		return fmt.Errorf("building message: %w", err)
	}

	addr := s.Config.Addr()
	d := net.Dialer{Timeout: s.timeout()}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout())); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, s.Config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if err := s.deliver(c, msg); err != nil {
		return err
	}

	if s.Logger != nil {
		s.Logger.Debug("SMTP message accepted",
			zap.String("addr", addr),
			zap.Int("bytes", len(msg)),
		)
	}
	return nil
}

func (s *Sender) deliver(c *smtp.Client, msg []byte) error {
	if ok, _ := c.Extension("STARTTLS"); !ok {
		return errors.New("smtp server does not offer STARTTLS")
	}
	tlsCfg := s.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: s.Config.Host, MinVersion: tls.VersionTLS12}
	}
	if err := c.StartTLS(tlsCfg); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}

	if err := c.Auth(smtp.PlainAuth("", s.Config.Username, s.Config.Password, s.Config.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(envelopeAddr(s.Config.From)); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(envelopeAddr(s.Config.To)); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	return c.Quit()
}

// envelopeAddr strips any display name from an address header value.
func envelopeAddr(v string) string {
	if a, err := netmail.ParseAddress(v); err == nil {
		return a.Address
	}
	return v
}
