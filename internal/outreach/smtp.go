package outreach

import (
	"context"
	"crypto/tls"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planner-contacts/internal/config"
	"github.com/sells-group/planner-contacts/internal/model"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, r model.Recipient) error
	Close() error
}

// SMTPSender delivers over a single reused SMTP session, upgraded with
// STARTTLS when the server offers it. A failed send drops the session so the
// next attempt reconnects.
type SMTPSender struct {
	cfg         config.SMTPConfig
	dialTimeout time.Duration
	tlsConfig   *tls.Config
	now         func() time.Time

	mu     sync.Mutex
	client *smtp.Client
}

// NewSMTPSender returns a sender for cfg. No connection is made until the
// first Send.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:         cfg,
		dialTimeout: 30 * time.Second,
		tlsConfig:   &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		now:         time.Now,
	}
}

func (s *SMTPSender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.Username
}

// envelopeFrom is the bare address for MAIL FROM, stripped of any display
// name in the From header.
func (s *SMTPSender) envelopeFrom() string {
	if addr, err := mail.ParseAddress(s.from()); err == nil {
		return addr.Address
	}
	return s.from()
}

// Send delivers r, dialing and authenticating first if needed.
func (s *SMTPSender) Send(ctx context.Context, r model.Recipient) error {
	msg, err := BuildMessage(s.from(), r, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		c, err := s.connect(ctx)
		if err != nil {
			return err
		}
		s.client = c
	}

	if err := s.deliver(r.Email, msg); err != nil {
		s.client.Close() //nolint:errcheck
		s.client = nil
		return err
	}
	return nil
}

func (s *SMTPSender) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	d := net.Dialer{Timeout: s.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: dial %s", addr)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "outreach: smtp handshake")
	}

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(s.tlsConfig); err != nil {
			c.Close() //nolint:errcheck
			return nil, eris.Wrap(err, "outreach: starttls")
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			c.Close() //nolint:errcheck
			return nil, eris.Wrap(err, "outreach: smtp auth")
		}
	}
	return c, nil
}

func (s *SMTPSender) deliver(to string, msg []byte) error {
	if err := s.client.Mail(s.envelopeFrom()); err != nil {
		return eris.Wrap(err, "outreach: MAIL FROM")
	}
	if err := s.client.Rcpt(to); err != nil {
		return eris.Wrapf(err, "outreach: RCPT TO %s", to)
	}
	w, err := s.client.Data()
	if err != nil {
		return eris.Wrap(err, "outreach: DATA")
	}
	if _, err := w.Write(msg); err != nil {
		w.Close() //nolint:errcheck
		return eris.Wrap(err, "outreach: write message")
	}
	return eris.Wrap(w.Close(), "outreach: end DATA")
}

// Close ends the SMTP session, if one is open.
func (s *SMTPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Quit()
	s.client = nil
	return eris.Wrap(err, "outreach: quit")
}
