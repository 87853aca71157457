// Package main is the entry point for send-mail, which composes a MIME
// multipart email from CLI arguments plus a body read from stdin and
// delivers it through the configured provider.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dspinellis/ai-repo-feedback/internal/config"
	"github.com/dspinellis/ai-repo-feedback/internal/email"
	"github.com/dspinellis/ai-repo-feedback/internal/provider"
	"github.com/dspinellis/ai-repo-feedback/internal/provider/graph"
	"github.com/dspinellis/ai-repo-feedback/internal/provider/ses"
	"github.com/dspinellis/ai-repo-feedback/internal/provider/smtp"
	smtptls "github.com/dspinellis/ai-repo-feedback/internal/tls"
)

// stringList collects the values of a repeatable flag in order.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	var attachments, ccEmails, ccNames stringList

	fromEmail := flag.String("from-email", "", "sender's email address (required)")
	fromName := flag.String("from-name", "", "sender's name (required)")
	toEmail := flag.String("to-email", "", "recipient's email address (required)")
	subject := flag.String("subject", "", "email subject (required)")
	toName := flag.String("to-name", "", "recipient's name (optional)")
	contentType := flag.String("content-type", "plain", "content type (e.g. html); default is plain")
	flag.Var(&attachments, "attachment", "attachment file name (can be repeated)")
	flag.Var(&ccEmails, "cc-email", "CC email address (can be repeated)")
	flag.Var(&ccNames, "cc-name", "CC name (can be repeated)")
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	// A missing .env file is fine; real environment variables win anyway.
	_ = godotenv.Load()

	required := []struct {
		name  string
		value string
	}{
		{"from-email", *fromEmail},
		{"from-name", *fromName},
		{"to-email", *toEmail},
		{"subject", *subject},
	}
	for _, f := range required {
		if f.value == "" {
			usageError("missing required flag --%s", f.name)
		}
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Logging.Level)

	msg := &email.Message{
		FromEmail:   *fromEmail,
		FromName:    *fromName,
		ToEmail:     *toEmail,
		ToName:      *toName,
		Subject:     *subject,
		CcEmails:    ccEmails,
		CcNames:     ccNames,
		ContentType: *contentType,
	}

	if err := msg.Validate(); err != nil {
		usageError("%v", err)
	}

	// Credentials are resolved and checked before any file or network I/O.
	prov, err := selectProvider(cfg)
	if err != nil {
		slog.Error("failed to configure delivery provider", "error", err)
		os.Exit(1)
	}

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		slog.Error("failed to read message body from stdin", "error", err)
		os.Exit(1)
	}
	msg.Body = string(body)

	for _, path := range attachments {
		att, err := email.AttachFile(path)
		if err != nil {
			slog.Error("cannot attach file", "file", path, "error", err)
			os.Exit(1)
		}
		msg.Attachments = append(msg.Attachments, att)
	}

	if err := prov.Send(context.Background(), msg); err != nil {
		slog.Error("mail delivery failed",
			"to", msg.ToEmail,
			"provider", prov.Name(),
			"error", err,
		)
		os.Exit(1)
	}
}

// usageError reports a command-line usage problem and exits with
// status 2 before any network activity.
func usageError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	flag.Usage()
	os.Exit(2)
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// selectProvider chooses the mail delivery backend based on configuration.
// The default is direct SMTP submission with credentials from the
// SMTP_SERVER / SMTP_USERNAME / SMTP_PASSWORD environment variables.
func selectProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "smtp", "":
		if err := cfg.ValidateSMTP(); err != nil {
			return nil, err
		}
		tlsCfg, err := smtpTLS(cfg)
		if err != nil {
			return nil, err
		}
		return smtp.New(smtp.Config{
			Server:   cfg.SMTP.Server,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			TLS:      tlsCfg,
		}), nil

	case "ses":
		if !cfg.SESConfigured() {
			return nil, fmt.Errorf("SES provider selected but SES_REGION is required")
		}
		return ses.New(context.Background(), ses.SESProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		})

	case "msgraph":
		if !cfg.GraphConfigured() {
			return nil, fmt.Errorf("Graph provider selected but GRAPH_TENANT_ID, GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET, and GRAPH_SENDER are required")
		}
		return graph.New(graph.GraphProviderConfig{
			TenantID:     cfg.Graph.TenantID,
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			Sender:       cfg.Graph.Sender,
		}), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// smtpTLS builds a client TLS configuration when custom trust settings
// are requested; otherwise nil lets the SMTP provider use its default.
func smtpTLS(cfg *config.Config) (*tls.Config, error) {
	if cfg.TLS.CAFile == "" && !cfg.TLS.InsecureSkipVerify {
		return nil, nil
	}
	host := cfg.SMTP.Server
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return smtptls.ClientConfig(host, cfg.TLS.CAFile, cfg.TLS.InsecureSkipVerify)
}

// setupLogger configures the global slog logger at the specified level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
