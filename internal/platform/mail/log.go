// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the logger instead of a relay.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements [Sender].
func (sender *LogSender) Send(context context.Context, message Message) error {
	sender.logger.InfoContext(context, "mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)
	return nil
}
