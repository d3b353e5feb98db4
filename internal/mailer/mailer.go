package mailer

import (
	"context"
	"log"
)

// Mailer delivers out-of-band messages to a principal. Real delivery is an
// external integration; the server only depends on this interface.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

// LogMailer writes the message to the process log instead of sending it.
// Used whenever no delivery integration is configured.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	log.Printf("password reset requested for %s: %s", email, resetURL)
	return nil
}
