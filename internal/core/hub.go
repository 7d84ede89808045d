package core

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/velichkin/parley-server/internal/store"
)

// MessageLog is the durable chat log the hub appends to and replays from.
// Each append is atomic; the hub never retries a failed one.
type MessageLog interface {
	AppendMessage(ctx context.Context, msg *store.Message) error
	RecentMessages(ctx context.Context, room string, limit int) ([]*store.Message, error)
}

// UserDirectory resolves display names and enumerates registered users for
// presence snapshots.
type UserDirectory interface {
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	ListUsers(ctx context.Context) ([]*store.User, error)
}

// Hub is the process-wide coordinator. It owns the presence registry for the
// process lifetime, runs one session per connection, and fans out events to
// connection handles. Presence is ephemeral; there is nothing to flush at
// shutdown.
type Hub struct {
	registry *Registry
	messages MessageLog
	users    UserDirectory
	verifier IdentityVerifier

	defaultRoom  RoomName
	historyLimit int

	log *zerolog.Logger
}

// NewHub creates the hub with its collaborators. defaultRoom and
// historyLimit fall back to "general" and 50 when unset.
func NewHub(messages MessageLog, users UserDirectory, verifier IdentityVerifier, defaultRoom string, historyLimit int, logger *zerolog.Logger) *Hub {
	if defaultRoom == "" {
		defaultRoom = "general"
	}
	if historyLimit <= 0 {
		historyLimit = 50
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		registry:     NewRegistry(),
		messages:     messages,
		users:        users,
		verifier:     verifier,
		defaultRoom:  RoomName(defaultRoom),
		historyLimit: historyLimit,
		log:          logger,
	}
}

// Registry exposes the presence registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// RegisterClient admits a new connection in the unauthenticated state and
// starts its session.
func (h *Hub) RegisterClient(client *Client) {
	h.registry.Register(client)
	s := &session{hub: h, client: client, state: stateConnected}
	go s.run(context.Background())
}

// UnregisterClient signals the connection's session to run disconnect
// handling. Safe to call more than once; a session that already closed is a
// no-op.
func (h *Hub) UnregisterClient(client *Client) {
	client.Close()
	client.closeCommands()
}

// broadcastToRoom fans an event out to every connection currently in the
// room, skipping except when set.
func (h *Hub) broadcastToRoom(room RoomName, ev *Event, except *Client) {
	println("DEBUG broadcastToRoom: room=", room.String(), "members=", len(h.registry.MembersOf(room)), "kind=", int(ev.Kind))
	for _, c := range h.registry.MembersOf(room) {
		if except != nil && c.ID == except.ID {
			continue
		}
		if !c.send(ev) {
			h.log.Debug().Str("client_id", c.ID).Str("room", room.String()).Msg("dropped event for slow consumer")
		}
	}
}

// broadcastUserList queries the whole user directory and pushes a presence
// snapshot to every connection.
func (h *Hub) broadcastUserList(ctx context.Context) {
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("list users for presence snapshot")
		return
	}

	online := make(map[int64]struct{})
	for _, id := range h.registry.OnlineIdentities() {
		online[id.ID] = struct{}{}
	}

	statuses := make([]UserStatus, 0, len(users))
	for _, u := range users {
		_, isOnline := online[u.ID]
		statuses = append(statuses, UserStatus{Username: u.Username, Online: isOnline})
	}

	ev := &Event{Kind: EventUpdateUsers, Users: statuses}
	for _, c := range h.registry.Clients() {
		if !c.send(ev) {
			h.log.Debug().Str("client_id", c.ID).Msg("dropped presence snapshot for slow consumer")
		}
	}
}
