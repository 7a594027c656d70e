// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig describes the relay used by [SMTPSender].
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Timeout  time.Duration
}

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender returns an [SMTPSender] for config.
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SMTPSender{config: config}
}

// Send implements [Sender].
func (sender *SMTPSender) Send(context context.Context, message Message) error {
	address := net.JoinHostPort(sender.config.Host, fmt.Sprint(sender.config.Port))

	// 1. Dial with the caller's deadline
	dialer := &net.Dialer{Timeout: sender.config.Timeout}
	connection, err := dialer.DialContext(context, "tcp", address)
	if err != nil {
		return fmt.Errorf("mail: failed to connect to %s: %w", address, err)
	}
	defer func() { _ = connection.Close() }()

	if deadline, ok := context.Deadline(); ok {
		_ = connection.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(connection, sender.config.Host)
	if err != nil {
		return fmt.Errorf("mail: failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	// 2. Upgrade and authenticate
	if sender.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: sender.config.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("mail: failed to start TLS: %w", err)
		}
	}

	if sender.config.Username != "" && sender.config.Password != "" {
		auth := smtp.PlainAuth("", sender.config.Username, sender.config.Password, sender.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mail: SMTP authentication failed: %w", err)
		}
	}

	// 3. Envelope and body
	if err := client.Mail(sender.config.From); err != nil {
		return fmt.Errorf("mail: failed to set sender: %w", err)
	}
	if err := client.Rcpt(message.To); err != nil {
		return fmt.Errorf("mail: failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(sender.buildMessage(message))); err != nil {
		return fmt.Errorf("mail: failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("mail: failed to close message: %w", err)
	}

	// The relay accepted the message once Data is closed
	_ = client.Quit()
	return nil
}

// buildMessage renders RFC 5322 headers and a plain-text body.
func (sender *SMTPSender) buildMessage(message Message) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", sender.config.From))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", message.To))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", message.Subject))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(message.Body)

	return builder.String()
}
