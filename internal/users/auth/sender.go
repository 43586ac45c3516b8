// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package auth

import (
	"context"
	"log/slog"
)

// LogCodeSender is a development [CodeSender] that writes the delivery to the
// structured log instead of an email gateway.
//
// The code itself is never logged; operators only see that a delivery
// happened. Production deployments replace this with a real gateway adapter.
type LogCodeSender struct {
	logger *slog.Logger
}

// NewLogCodeSender constructs a log-backed sender.
func NewLogCodeSender(logger *slog.Logger) *LogCodeSender {
	return &LogCodeSender{logger: logger}
}

// Send implements [CodeSender].
func (sender *LogCodeSender) Send(context context.Context, email, code string) error {
	sender.logger.InfoContext(context, "mfa_code_dispatched",
		slog.String("email", email),
		slog.Int("code_length", len(code)),
	)
	return nil
}
