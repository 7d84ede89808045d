package store

import (
	"context"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// MessageKind distinguishes plain text from file attachments.
type MessageKind string

const (
	MessageKindText MessageKind = "text"
	MessageKindFile MessageKind = "file"
)

// Message is a persisted chat message. Room is always set, including for
// private messages where it is the synthesized pair room name. RecipientID is
// nil for room-scoped messages.
type Message struct {
	ID            int64
	SenderID      int64
	SenderName    string
	RecipientID   *int64
	RecipientName string
	Room          string
	Kind          MessageKind
	Body          string
	FileRef       *string
	CreatedAt     time.Time
}

// UserStore handles user persistence and lookup. It doubles as the user
// directory for presence snapshots.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListUsers returns every registered user.
	ListUsers(ctx context.Context) ([]*User, error)
}

// MessageStore is the durable, append-only message log.
type MessageStore interface {
	// AppendMessage persists a message and fills in its ID and CreatedAt.
	AppendMessage(ctx context.Context, msg *Message) error

	// RecentMessages returns the newest messages of a room, oldest-first,
	// capped at limit. Sender and recipient names are resolved.
	RecentMessages(ctx context.Context, room string, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
