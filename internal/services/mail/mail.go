// Package mail delivers transactional email through an external provider.
//
// Delivery is always best-effort: the auth flows that trigger a send must
// succeed whether or not the provider does, so failures surface only on the
// dispatcher's log sink.
package mail

// Message is a single outbound transactional email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Sender performs a single delivery attempt. There is no retry or backoff;
// callers that cannot tolerate failure should not exist in this codebase.
type Sender interface {
	Send(msg Message) error
}
