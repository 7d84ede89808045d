package core

import "github.com/velichkin/parley-server/internal/store"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAuthenticate binds an identity to the connection.
	CommandAuthenticate CommandKind = iota
	// CommandLogin joins the default room and replays its history.
	CommandLogin
	// CommandJoinRoom moves the connection into another room.
	CommandJoinRoom
	// CommandSendMessage delivers a chat message to the current room.
	CommandSendMessage
	// CommandPrivateMessage delivers a message to one identity's connections.
	CommandPrivateMessage
	// CommandTyping toggles the ephemeral typing indicator.
	CommandTyping
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// Credential carries the token for CommandAuthenticate.
	Credential string

	// Room is the target room for CommandJoinRoom.
	Room string

	// To is the recipient display name for CommandPrivateMessage.
	To string

	// Body, MsgKind and FileRef describe message content.
	Body    string
	MsgKind store.MessageKind
	FileRef *string

	// IsTyping is the indicator state for CommandTyping.
	IsTyping bool
}
