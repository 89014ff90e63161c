package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Notifier delivers best-effort notifications. Implementations never block a
// domain operation: failures are logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string)
}

type notification struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

type natsNotifier struct {
	conn      *nats.Conn
	subject   string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewNatsNotifier publishes notifications onto a NATS subject for the
// delivery workers. A nil connection degrades to log-only delivery.
func NewNatsNotifier(conn *nats.Conn, subject string, logger zerolog.Logger) Notifier {
	return &natsNotifier{
		conn:      conn,
		subject:   subject,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *natsNotifier) Notify(_ context.Context, recipient, subject, body string) {
	event := notification{
		Recipient: recipient,
		Subject:   n.sanitizer.Sanitize(subject),
		Body:      n.sanitizer.Sanitize(body),
		SentAt:    time.Now(),
	}

	if n.conn == nil {
		n.logger.Info().Str("recipient", recipient).Str("subject", event.Subject).Msg("notification (no transport)")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn().Err(err).Msg("failed to encode notification")
		return
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		n.logger.Warn().Err(err).Str("recipient", recipient).Msg("failed to publish notification")
	}
}
