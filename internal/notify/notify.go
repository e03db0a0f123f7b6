// Package notify delivers check alerts to e-mail recipients.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/samims/sitepulse/internal/model"
)

// Deliverer sends one alert to a set of recipients.
type Deliverer interface {
	Deliver(ctx context.Context, to []string, event model.CheckEvent) error
}

var emailTmpl = template.Must(template.New("email").Parse(
	"From: {{ .From }}\r\n" +
		"To: {{ .To }}\r\n" +
		"Subject: [sitepulse] {{ .Event.CheckType }} check {{ .Event.Status }} for {{ .Event.URL }}\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		"Check:   {{ .Event.CheckType }}\r\n" +
		"Site:    {{ .Event.URL }}\r\n" +
		"Status:  {{ .Event.Status }}\r\n" +
		"Checked: {{ .Event.CheckedAt }}\r\n" +
		"\r\n" +
		"{{ .Event.Message }}\r\n"))

// Render builds the RFC 5322 message sent for event.
func Render(from string, to []string, event model.CheckEvent) ([]byte, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct {
		From  string
		To    string
		Event model.CheckEvent
	}{From: from, To: strings.Join(to, ", "), Event: event})
	if err != nil {
		return nil, fmt.Errorf("render alert email: %w", err)
	}
	return buf.Bytes(), nil
}

type SMTPConfig struct {
	Addr     string
	Username string
	Password string
	From     string
}

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpDeliverer struct {
	cfg      SMTPConfig
	sendMail SendMailFunc
	log      *slog.Logger
}

// NewSMTPDeliverer sends through cfg.Addr. A nil send uses smtp.SendMail.
func NewSMTPDeliverer(cfg SMTPConfig, send SendMailFunc, log *slog.Logger) Deliverer {
	if send == nil {
		send = smtp.SendMail
	}
	return &smtpDeliverer{cfg: cfg, sendMail: send, log: log.With("layer", "notify", "component", "smtpDeliverer")}
}

func (d *smtpDeliverer) Deliver(ctx context.Context, to []string, event model.CheckEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := Render(d.cfg.From, to, event)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if d.cfg.Username != "" {
		host, _, err := net.SplitHostPort(d.cfg.Addr)
		if err != nil {
			host = d.cfg.Addr
		}
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, host)
	}

	if err := d.sendMail(d.cfg.Addr, auth, d.cfg.From, to, msg); err != nil {
		return fmt.Errorf("send alert email via %s: %w", d.cfg.Addr, err)
	}
	d.log.Info("Alert email sent",
		slog.String("check_type", string(event.CheckType)),
		slog.Int("recipients", len(to)))
	return nil
}

type logDeliverer struct {
	log *slog.Logger
}

// NewLogDeliverer only logs alerts. Used when no SMTP server is configured.
func NewLogDeliverer(log *slog.Logger) Deliverer {
	return &logDeliverer{log: log.With("layer", "notify", "component", "logDeliverer")}
}

func (d *logDeliverer) Deliver(_ context.Context, to []string, event model.CheckEvent) error {
	d.log.Warn("Check alert",
		slog.String("check_type", string(event.CheckType)),
		slog.String("url", event.URL),
		slog.String("status", string(event.Status)),
		slog.String("message", event.Message),
		slog.Any("recipients", to))
	return nil
}
