package core

import (
	"time"

	"github.com/velichkin/parley-server/internal/store"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventChatHistory delivers room history to one connection, oldest-first.
	EventChatHistory EventKind = iota
	// EventMessage is a room-scoped chat message or a system notice.
	EventMessage
	// EventPrivateMessage is a direct message between two identities.
	EventPrivateMessage
	// EventUpdateUsers is a presence snapshot of the whole user directory.
	EventUpdateUsers
	// EventUserTyping is the ephemeral typing indicator.
	EventUserTyping
	// EventError notifies the originating connection about a domain error.
	EventError
)

// Message is the delivered form of a chat message. System notices have
// System set and no sender.
type Message struct {
	ID        int64
	Sender    string
	Recipient string
	Room      RoomName
	Kind      store.MessageKind
	Body      string
	FileRef   *string
	System    bool
	CreatedAt time.Time
}

// UserStatus is one entry of a presence snapshot. An identity is online if
// at least one of its connections is.
type UserStatus struct {
	Username string
	Online   bool
}

// Typing describes a typing indicator change.
type Typing struct {
	Username string
	IsTyping bool
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     RoomName
	Message  *Message
	Messages []*Message // for EventChatHistory
	Users    []UserStatus
	Typing   *Typing
	Error    *Error
}

// systemNotice builds a non-persisted informational message for a room.
func systemNotice(room RoomName, text string) *Event {
	return &Event{
		Kind: EventMessage,
		Room: room,
		Message: &Message{
			Room:      room,
			Kind:      store.MessageKindText,
			Body:      text,
			System:    true,
			CreatedAt: time.Now(),
		},
	}
}

func errorEvent(err *Error) *Event {
	return &Event{Kind: EventError, Error: err}
}
