package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/velichkin/parley-server/internal/store"
)

// sessionState is the per-connection protocol lifecycle.
type sessionState int

const (
	stateConnected sessionState = iota
	stateAuthenticated
	stateInRoom
	stateClosed
)

// session drives one connection through the protocol state machine. It is
// the only goroutine handling the connection's commands, so state fields need
// no locking; shared presence state lives in the registry.
type session struct {
	hub      *Hub
	client   *Client
	state    sessionState
	identity Identity
	room     RoomName
}

func (s *session) run(ctx context.Context) {
	for cmd := range s.client.Commands {
		s.handle(ctx, cmd)
	}
	s.disconnect(ctx)
}

func (s *session) handle(ctx context.Context, cmd *Command) {
	if s.state == stateClosed {
		return
	}
	switch cmd.Kind {
	case CommandAuthenticate:
		s.authenticate(ctx, cmd)
	case CommandLogin:
		s.login(ctx)
	case CommandJoinRoom:
		s.joinRoom(ctx, cmd.Room)
	case CommandSendMessage:
		s.sendMessage(ctx, cmd)
	case CommandPrivateMessage:
		s.privateMessage(ctx, cmd)
	case CommandTyping:
		s.typing(cmd.IsTyping)
	default:
		s.fail(coreError(ErrCodeBadRequest, "unknown command"))
	}
}

// fail delivers a domain error on the originating connection only. Fatal
// errors also mark the connection for teardown.
func (s *session) fail(err *Error) {
	s.client.send(errorEvent(err))
	if err.Fatal() {
		s.client.Close()
	}
}

func (s *session) authenticate(ctx context.Context, cmd *Command) {
	if s.state != stateConnected {
		s.fail(coreError(ErrCodeAlreadyAuthenticated, "connection already authenticated"))
		return
	}

	identity, err := s.hub.verifier.Verify(ctx, cmd.Credential)
	if err != nil {
		s.hub.log.Warn().Err(err).Str("client_id", s.client.ID).Msg("authentication failed")
		s.fail(coreError(ErrCodeAuthFailed, "authentication failed"))
		return
	}

	if err := s.hub.registry.Authenticate(s.client.ID, identity); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			s.fail(ce)
		} else {
			s.fail(coreError(ErrCodeAuthFailed, "authentication failed"))
		}
		return
	}

	s.identity = identity
	s.state = stateAuthenticated
	s.hub.log.Debug().Str("client_id", s.client.ID).Str("user", identity.Name).Msg("client authenticated")
}

func (s *session) login(ctx context.Context) {
	if s.state != stateAuthenticated {
		if s.state == stateConnected {
			s.fail(coreError(ErrCodeNotAuthenticated, "authenticate first"))
		} else {
			s.fail(coreError(ErrCodeBadRequest, "already logged in"))
		}
		return
	}

	s.enterRoom(ctx, s.hub.defaultRoom, fmt.Sprintf("%s joined the chat", s.identity.Name))
	s.hub.broadcastUserList(ctx)
}

func (s *session) joinRoom(ctx context.Context, raw string) {
	if s.state != stateAuthenticated && s.state != stateInRoom {
		s.fail(coreError(ErrCodeNotAuthenticated, "authenticate first"))
		return
	}

	room, err := ParseRoomName(raw)
	if err != nil {
		s.fail(coreError(ErrCodeBadRequest, err.Error()))
		return
	}

	s.enterRoom(ctx, room, fmt.Sprintf("%s joined the room", s.identity.Name))
}

// enterRoom performs the leave/join transition as one logical step: the old
// room gets its leave notice exactly once, the new room replays history to
// this connection before anything else, then gets the join notice.
func (s *session) enterRoom(ctx context.Context, room RoomName, joinText string) {
	prev, ok := s.hub.registry.SetRoom(s.client.ID, room)
	if !ok {
		return
	}

	if prev != "" {
		s.hub.broadcastToRoom(prev, systemNotice(prev, fmt.Sprintf("%s left the room", s.identity.Name)), nil)
	}

	s.replayHistory(ctx, room)
	s.hub.broadcastToRoom(room, systemNotice(room, joinText), nil)

	s.room = room
	s.state = stateInRoom
}

// replayHistory sends the room's recent messages, oldest-first, to this
// connection only. FIFO event delivery guarantees the history arrives before
// any subsequent message event.
func (s *session) replayHistory(ctx context.Context, room RoomName) {
	msgs, err := s.hub.messages.RecentMessages(ctx, room.String(), s.hub.historyLimit)
	if err != nil {
		s.hub.log.Error().Err(err).Str("room", room.String()).Msg("history query failed")
		s.fail(coreError(ErrCodePersistence, "could not load history"))
		msgs = nil
	}

	delivered := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		delivered = append(delivered, deliveredMessage(m))
	}
	s.client.send(&Event{Kind: EventChatHistory, Room: room, Messages: delivered})
}

func (s *session) sendMessage(ctx context.Context, cmd *Command) {
	println("DEBUG sendMessage: state", int(s.state))
	if !s.requireInRoom() {
		return
	}

	msg, ok := s.buildMessage(cmd, s.room, nil, "")
	if !ok {
		return
	}

	println("DEBUG sendMessage: appending", msg.Body, "room=", msg.Room)
	// Write-then-broadcast: the message is durable before anyone sees it.
	if err := s.hub.messages.AppendMessage(ctx, msg); err != nil {
		println("DEBUG sendMessage: append failed:", err.Error())
		s.hub.log.Error().Err(err).Str("room", msg.Room).Msg("message append failed")
		s.fail(coreError(ErrCodePersistence, "could not save message"))
		return
	}

	println("DEBUG sendMessage: append ok id=", msg.ID)
	s.hub.broadcastToRoom(s.room, &Event{Kind: EventMessage, Room: s.room, Message: deliveredMessage(msg)}, nil)
}

func (s *session) privateMessage(ctx context.Context, cmd *Command) {
	if !s.requireInRoom() {
		return
	}

	recipient, err := s.hub.users.GetUserByUsername(ctx, cmd.To)
	if err != nil {
		s.fail(coreError(ErrCodeRecipientNotFound, "user not found"))
		return
	}

	room := DirectRoom(s.identity.ID, recipient.ID)
	msg, ok := s.buildMessage(cmd, room, &recipient.ID, recipient.Username)
	if !ok {
		return
	}

	// Persisted even when the recipient is offline; the log keeps the
	// message retrievable under the pair room.
	if err := s.hub.messages.AppendMessage(ctx, msg); err != nil {
		s.hub.log.Error().Err(err).Str("room", msg.Room).Msg("private message append failed")
		s.fail(coreError(ErrCodePersistence, "could not save message"))
		return
	}

	conns := s.hub.registry.ConnectionsFor(recipient.ID)
	if len(conns) == 0 {
		s.fail(coreError(ErrCodeRecipientOffline, "user is offline"))
		return
	}

	ev := &Event{Kind: EventPrivateMessage, Room: room, Message: deliveredMessage(msg)}
	s.client.send(ev)
	for _, c := range conns {
		if c.ID == s.client.ID {
			continue
		}
		if !c.send(ev) {
			s.hub.log.Debug().Str("client_id", c.ID).Msg("dropped private message for slow consumer")
		}
	}
}

func (s *session) typing(isTyping bool) {
	if !s.requireInRoom() {
		return
	}

	// Ephemeral: never persisted, sender excluded.
	ev := &Event{
		Kind:   EventUserTyping,
		Room:   s.room,
		Typing: &Typing{Username: s.identity.Name, IsTyping: isTyping},
	}
	s.hub.broadcastToRoom(s.room, ev, s.client)
}

// disconnect runs once the command stream ends. Removal is idempotent; a
// connection that never authenticated leaves no trace and emits nothing.
func (s *session) disconnect(ctx context.Context) {
	identity, room, ok := s.hub.registry.Remove(s.client.ID)
	s.state = stateClosed
	if !ok || identity == nil {
		return
	}

	if room != "" {
		s.hub.broadcastToRoom(room, systemNotice(room, fmt.Sprintf("%s left the chat", identity.Name)), nil)
	}
	s.hub.broadcastUserList(ctx)
	s.hub.log.Debug().Str("client_id", s.client.ID).Str("user", identity.Name).Msg("client disconnected")
}

func (s *session) requireInRoom() bool {
	switch s.state {
	case stateInRoom:
		return true
	case stateConnected:
		s.fail(coreError(ErrCodeNotAuthenticated, "authenticate first"))
	default:
		s.fail(coreError(ErrCodeNotInRoom, "join a room first"))
	}
	return false
}

func (s *session) buildMessage(cmd *Command, room RoomName, recipientID *int64, recipientName string) (*store.Message, bool) {
	kind := cmd.MsgKind
	if kind == "" {
		kind = store.MessageKindText
	}
	if kind != store.MessageKindText && kind != store.MessageKindFile {
		s.fail(coreError(ErrCodeBadRequest, "unknown message kind"))
		return nil, false
	}
	if cmd.Body == "" && cmd.FileRef == nil {
		s.fail(coreError(ErrCodeBadRequest, "message is empty"))
		return nil, false
	}

	return &store.Message{
		SenderID:      s.identity.ID,
		SenderName:    s.identity.Name,
		RecipientID:   recipientID,
		RecipientName: recipientName,
		Room:          room.String(),
		Kind:          kind,
		Body:          cmd.Body,
		FileRef:       cmd.FileRef,
	}, true
}

// deliveredMessage converts a persisted message into its delivered form.
func deliveredMessage(m *store.Message) *Message {
	return &Message{
		ID:        m.ID,
		Sender:    m.SenderName,
		Recipient: m.RecipientName,
		Room:      RoomName(m.Room),
		Kind:      m.Kind,
		Body:      m.Body,
		FileRef:   m.FileRef,
		CreatedAt: m.CreatedAt,
	}
}
