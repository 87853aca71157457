// Package smtp implements a Provider that submits mail over an
// implicit-TLS SMTP connection with AUTH PLAIN.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	netsmtp "net/smtp"

	"github.com/dspinellis/ai-repo-feedback/internal/email"
)

// defaultPort is the implicit-TLS SMTP submission port.
const defaultPort = "465"

// Config holds the settings for creating a Sender.
type Config struct {
	// Server is the SMTP server, as "host" or "host:port".
	// Port 465 is assumed when none is given.
	Server   string
	Username string
	Password string

	// TLS configures the encrypted transport. If nil, a config with
	// the server hostname and TLS 1.2 minimum is used.
	TLS *tls.Config
}

// Session is the subset of *net/smtp.Client used by Sender.
// Used for testing with mock implementations.
type Session interface {
	Auth(a netsmtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
}

// DialFunc opens an SMTP session over an already-encrypted connection.
type DialFunc func(addr string, tlsCfg *tls.Config) (Session, error)

// Sender submits messages to a single SMTP server over TLS.
type Sender struct {
	config Config
	dial   DialFunc
}

// New creates a Sender for the given configuration.
func New(cfg Config) *Sender {
	if cfg.TLS == nil {
		cfg.TLS = &tls.Config{
			ServerName: hostOnly(cfg.Server),
			MinVersion: tls.VersionTLS12,
		}
	}
	return &Sender{config: cfg, dial: dialTLS}
}

// NewWithDialer creates a Sender with a custom dial function, used for testing.
func NewWithDialer(cfg Config, dial DialFunc) *Sender {
	return &Sender{config: cfg, dial: dial}
}

// Send opens one TLS connection, authenticates, and submits the message
// to its envelope recipients (the From and To addresses; CC recipients
// are header-only). The session QUIT runs exactly once, whether or not
// transmission succeeds.
func (s *Sender) Send(_ context.Context, msg *email.Message) error {
	addr := ensurePort(s.config.Server)

	session, err := s.dial(addr, s.config.TLS)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer session.Quit()

	auth := netsmtp.PlainAuth("", s.config.Username, s.config.Password, hostOnly(s.config.Server))
	if err := session.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := session.Mail(msg.FromEmail); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	for _, rcpt := range msg.Envelope() {
		if err := session.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s rejected: %w", rcpt, err)
		}
	}

	w, err := session.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	raw, err := msg.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("failed to transmit message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message not accepted: %w", err)
	}

	return nil
}

// Name returns the provider name.
func (s *Sender) Name() string {
	return "smtp"
}

// dialTLS establishes the TLS connection and SMTP session.
func dialTLS(addr string, tlsCfg *tls.Config) (Session, error) {
	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	client, err := netsmtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

// ensurePort appends the implicit-TLS port when server carries none.
func ensurePort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, defaultPort)
}

// hostOnly strips an optional port from the configured server.
func hostOnly(server string) string {
	if host, _, err := net.SplitHostPort(server); err == nil {
		return host
	}
	return server
}
