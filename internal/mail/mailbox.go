package mail

import "context"

// Message is one raw mailbox message: the full RFC 5322 source, headers and
// body.
type Message struct {
	Seq uint32
	Raw []byte
}

// Mailbox is the narrow boundary to a mail store. Implementations deliver
// the full message source per new-message event and guarantee an exclusive
// view: only one watcher processes a given mailbox at a time.
type Mailbox interface {
	Connect(ctx context.Context) error
	// Watch returns a channel of newly arrived messages. The channel closes
	// when the connection is lost or the context is cancelled.
	Watch(ctx context.Context) (<-chan Message, error)
	// FetchUnseen returns messages not yet seen, marking them seen. Used by
	// the periodic sweep fallback, safe to call while a watch is active.
	FetchUnseen(ctx context.Context) ([]Message, error)
	Close() error
}
