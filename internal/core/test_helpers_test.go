package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/velichkin/parley-server/internal/store"
)

// mustEvent waits for the next event of the given kind, skipping others.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// nextEvent returns the next event regardless of kind.
func nextEvent(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()

	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return nil
	}
}

// collectEvents drains the channel for the given duration.
func collectEvents(ch <-chan *Event, dur time.Duration) []*Event {
	var events []*Event
	deadline := time.Now().Add(dur)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	return events
}

// fakeLog is an in-memory message log that records appends.
type fakeLog struct {
	mu         sync.Mutex
	messages   []*store.Message
	nextID     int64
	failAppend bool
}

func newFakeLog() *fakeLog {
	return &fakeLog{nextID: 1}
}

func (l *fakeLog) AppendMessage(_ context.Context, msg *store.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAppend {
		return fmt.Errorf("append failed")
	}
	msg.ID = l.nextID
	l.nextID++
	msg.CreatedAt = time.Now()
	saved := *msg
	l.messages = append(l.messages, &saved)
	return nil
}

func (l *fakeLog) RecentMessages(_ context.Context, room string, limit int) ([]*store.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*store.Message
	for _, m := range l.messages {
		if m.Room == room {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (l *fakeLog) appendCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

func (l *fakeLog) inRoom(room string) []*store.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*store.Message
	for _, m := range l.messages {
		if m.Room == room {
			out = append(out, m)
		}
	}
	return out
}

// fakeDirectory resolves users from a fixed set.
type fakeDirectory struct {
	users []*store.User
}

func (d *fakeDirectory) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	for _, u := range d.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q not found", username)
}

func (d *fakeDirectory) ListUsers(_ context.Context) ([]*store.User, error) {
	return d.users, nil
}

// fakeVerifier accepts tokens of the form "tok-<name>".
type fakeVerifier struct {
	identities map[string]Identity
}

func (v *fakeVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	if id, ok := v.identities[credential]; ok {
		return id, nil
	}
	return Identity{}, fmt.Errorf("bad credential")
}

func newTestHub(log *fakeLog) *Hub {
	users := []*store.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}
	verifier := &fakeVerifier{identities: map[string]Identity{
		"tok-alice": {ID: 1, Name: "alice"},
		"tok-bob":   {ID: 2, Name: "bob"},
		"tok-carol": {ID: 3, Name: "carol"},
	}}
	return NewHub(log, &fakeDirectory{users: users}, verifier, "general", 50, nil)
}

// loginClient registers a fresh connection, authenticates it and joins the
// default room, consuming the history replay.
func loginClient(t *testing.T, hub *Hub, id, token string) *Client {
	t.Helper()

	c := NewClient(id)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandAuthenticate, Credential: token}
	c.Commands <- &Command{Kind: CommandLogin}
	mustEvent(t, c.Events, EventChatHistory)
	return c
}
