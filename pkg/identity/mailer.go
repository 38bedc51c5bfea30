// SPDX-License-Identifier: Apache-2.0
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Work-Fort/Intake/pkg/store"
)

// OutboxCollection holds messages queued by OutboxMailer
const OutboxCollection = "outbox"

// Message is an outgoing email
type Message struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to Mailer
type MailerFunc func(ctx context.Context, msg Message) error

// Send implements Mailer
func (f MailerFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// OutboxMailer writes messages to the outbox collection for a relay to deliver
type OutboxMailer struct {
	store  store.Store
	logger *log.Logger
}

// NewOutboxMailer creates a mailer writing to s
func NewOutboxMailer(s store.Store, logger *log.Logger) *OutboxMailer {
	if logger == nil {
		logger = log.Default()
	}
	return &OutboxMailer{store: s, logger: logger}
}

// Send implements Mailer
func (m *OutboxMailer) Send(ctx context.Context, msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if err := m.store.Put(ctx, OutboxCollection, msg.ID, msg); err != nil {
		return fmt.Errorf("queue message: %w", err)
	}
	m.logger.Info("Message queued", "id", msg.ID, "to", msg.To, "subject", msg.Subject)
	return nil
}

// VerificationMessage builds the email sent after registration
func VerificationMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Body: fmt.Sprintf("Welcome! Confirm your email address by opening the link below:\n\n%s\n\n"+
			"If you did not create an account you can ignore this message.\n", link),
	}
}
