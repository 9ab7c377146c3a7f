// Package mailer delivers workflow emails. Delivery is best-effort: the
// caller treats failures as log-and-continue, never as a transition failure.
package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Mailer sends messages to a single recipient each.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
