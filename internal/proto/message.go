package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeAuthenticate   = "authenticate"
	InboundTypeLogin          = "login"
	InboundTypeJoinRoom       = "joinRoom"
	InboundTypeSendMessage    = "sendMessage"
	InboundTypePrivateMessage = "privateMessage"
	InboundTypeTyping         = "typing"

	OutboundTypeChatHistory    = "chatHistory"
	OutboundTypeMessage        = "message"
	OutboundTypePrivateMessage = "privateMessage"
	OutboundTypeUpdateUsers    = "updateUsers"
	OutboundTypeUserTyping     = "userTyping"
	OutboundTypeError          = "error"
)

// AuthenticateData carries the credential token.
type AuthenticateData struct {
	Token string `json:"token"`
}

// JoinRoomData requests a move into a specific room.
type JoinRoomData struct {
	Room string `json:"room"`
}

// SendMessageData is a room-scoped chat message from the client.
type SendMessageData struct {
	Content string  `json:"content"`
	Kind    string  `json:"kind,omitempty"`
	FileRef *string `json:"fileRef,omitempty"`
}

// PrivateMessageData is a direct message addressed by display name.
type PrivateMessageData struct {
	To      string  `json:"to"`
	Content string  `json:"content"`
	Kind    string  `json:"kind,omitempty"`
	FileRef *string `json:"fileRef,omitempty"`
}

// TypingData toggles the typing indicator.
type TypingData struct {
	IsTyping bool `json:"isTyping"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a delivered chat message or system notice.
type EventMessage struct {
	ID        int64   `json:"id,omitempty"`
	Sender    string  `json:"sender,omitempty"`
	Recipient string  `json:"recipient,omitempty"`
	Room      string  `json:"room"`
	Kind      string  `json:"kind,omitempty"`
	Content   string  `json:"content"`
	FileRef   *string `json:"fileRef,omitempty"`
	System    bool    `json:"system,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// EventChatHistory replays room history, oldest-first.
type EventChatHistory struct {
	Room     string         `json:"room"`
	Messages []EventMessage `json:"messages"`
}

// EventUserStatus is one entry of a presence snapshot.
type EventUserStatus struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

// EventUserTyping notifies about a typing indicator change.
type EventUserTyping struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
