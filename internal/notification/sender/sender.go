// Package sender delivers push notifications to device tokens. Every driver
// reports how many tokens accepted the message; a message counts as delivered
// when at least one did.
package sender

import (
	"context"
	"errors"
	"log/slog"

	"sarkar/internal/notification/metrics"
)

// ErrCircuitOpen is returned without contacting the upstream while its
// breaker is open.
var ErrCircuitOpen = errors.New("push upstream circuit open")

// LogSender writes notifications to the log and reports every token as
// delivered. Used in development and when no push driver is configured.
type LogSender struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLogSender(logger *slog.Logger, m *metrics.Metrics) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger, metrics: m}
}

func (s *LogSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	s.logger.InfoContext(ctx, "push notification",
		"tokens", len(tokens),
		"title", title,
		"body", body,
		"scheme_id", data["schemeId"],
	)
	s.metrics.AddDeliveries("log", len(tokens), 0)
	return len(tokens), nil
}
