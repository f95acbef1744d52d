package ports

import "context"

// Email is a single transactional message.
type Email struct {
	To      string
	Subject string
	Message string
}

// Mailer delivers transactional email. Callers on the token flows treat a
// send failure as a rollback trigger: the pending token fields are cleared so
// a user is never left holding a token that was never delivered.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
