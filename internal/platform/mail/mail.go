// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers transactional messages such as confirmation codes.

Senders:

  - SMTPSender: net/smtp relay with optional implicit TLS.
  - LogSender: writes the message to the structured log (development).
  - BreakerSender: wraps any Sender with a circuit breaker.

Every sender reports failure synchronously so callers can refuse to persist
state that depends on a message the recipient never received.
*/
package mail

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the delivery channel is refusing traffic.
var ErrUnavailable = errors.New("mail: delivery channel unavailable")

// Message is a plain-text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a [Message].
type Sender interface {
	Send(context context.Context, message Message) error
}

// SenderFunc adapts a function to the [Sender] interface.
type SenderFunc func(context context.Context, message Message) error

// Send calls fn(context, message).
func (fn SenderFunc) Send(context context.Context, message Message) error {
	return fn(context, message)
}
