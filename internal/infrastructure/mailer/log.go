package mailer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/core/ports"
)

// LogMailer writes messages to the log instead of sending them. It is the
// development fallback when no SMTP host is configured, so token links remain
// visible without a mail server.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, email ports.Email) error {
	m.log.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Str("message", email.Message).
		Msg("email (log delivery)")
	return nil
}
