package ports

import "context"

// Email is a two-part outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender delivers a message synchronously. Implementations apply their
// own bounded timeout; a failure must never abort the flow that produced the
// message.
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}

// MailDispatcher accepts messages for asynchronous delivery off the request
// path.
type MailDispatcher interface {
	Enqueue(msg Email)
}
