package core

import "sync"

// Client is one live connection as seen by the core layer. Identity and room
// bindings live in the registry, not here; the client only carries the
// channels bridging it to its transport.
type Client struct {
	ID string

	// Commands is written by the transport read loop and consumed by the
	// connection's session goroutine. Closed by the hub on unregister.
	Commands chan *Command

	// Events is consumed by the transport write loop. FIFO per connection:
	// outbound order matches the order the hub issued events.
	Events chan *Event

	done      chan struct{}
	closeOnce sync.Once
	cmdOnce   sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		done:     make(chan struct{}),
	}
}

// Done is closed when the connection should be torn down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection for teardown. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// closeCommands ends the session's command stream. Only the hub calls this,
// after the transport is done writing.
func (c *Client) closeCommands() {
	c.cmdOnce.Do(func() { close(c.Commands) })
}

// send delivers an event without ever blocking the caller. Events for a
// closed or saturated connection are dropped; the transport's own teardown
// handles the rest.
func (c *Client) send(ev *Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
