package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Your tickets for {{.MovieTitle}}</h2>
  <p>Hi {{.CustomerName}}, your booking is confirmed.</p>
  <table cellpadding="4">
    <tr><td>Reference</td><td><strong>{{.Reference}}</strong></td></tr>
    <tr><td>Date</td><td>{{.ShowDate}} {{.ShowTime}}</td></tr>
    <tr><td>Hall</td><td>{{.Hall}}</td></tr>
    <tr><td>Seats</td><td>{{range $i, $s := .SeatIDs}}{{if $i}}, {{end}}{{$s}}{{end}}</td></tr>
    <tr><td>Total</td><td>${{.Total}}</td></tr>
  </table>
  <p>Show the reference at the entrance.</p>
</body>
</html>`))

// SMTPMailer sends confirmation emails directly.
type SMTPMailer struct {
	config utils.EmailConfig
	log    *zap.Logger
}

func NewSMTPMailer(config utils.EmailConfig, log *zap.Logger) (*SMTPMailer, error) {
	if config.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("smtp port %d out of range", config.Port)
	}
	if config.From == "" {
		return nil, errors.New("sender address is required")
	}

	return &SMTPMailer{
		config: config,
		log:    log.With(zap.String("notifier", "smtp")),
	}, nil
}

func (m *SMTPMailer) BookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
	if ev.Email == "" {
		return errors.New("confirmation has no recipient")
	}

	msg, err := buildConfirmationMessage(m.config.From, ev)
	if err != nil {
		return err
	}

	if err := m.send(ctx, ev.Email, msg); err != nil {
		return fmt.Errorf("send confirmation %s: %w", ev.Reference, err)
	}

	m.log.Info("Confirmation email sent",
		zap.String("reference", ev.Reference),
		zap.String("to", ev.Email),
	)
	return nil
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.config.User != "" {
		auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(m.config.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}

func buildConfirmationMessage(from string, ev BookingConfirmedEvent) ([]byte, error) {
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, ev); err != nil {
		return nil, fmt.Errorf("render confirmation: %w", err)
	}

	subject := mime.QEncoding.Encode("utf-8", fmt.Sprintf("Booking %s confirmed: %s", ev.Reference, ev.MovieTitle))

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + ev.Email + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return []byte(msg.String()), nil
}
