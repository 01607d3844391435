// Package mail delivers outbound messages. The service only depends on the
// Mailer interface; delivery failures are reported to the caller and never
// retried here.
package mail

import "context"

// Message is a structured outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a message, possibly failing.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
