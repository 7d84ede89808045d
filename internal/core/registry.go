package core

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the authoritative in-memory map of connections to identities
// and rooms. All presence mutations go through it; the mutex is the single
// serialization point and is never held across I/O.
type Registry struct {
	mu         sync.Mutex
	conns      map[string]*presenceEntry
	byIdentity map[int64]map[string]*Client
}

type presenceEntry struct {
	client   *Client
	identity *Identity
	room     RoomName
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:      make(map[string]*presenceEntry),
		byIdentity: make(map[int64]map[string]*Client),
	}
}

// Register creates an unauthenticated entry for the connection.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[client.ID] = &presenceEntry{client: client}
}

// Authenticate binds an identity to a registered connection. Binding twice is
// a protocol violation; multiple connections per identity are permitted.
func (r *Registry) Authenticate(connID string, identity Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("connection %s not registered", connID)
	}
	if entry.identity != nil {
		return coreError(ErrCodeAlreadyAuthenticated, "connection already authenticated")
	}
	entry.identity = &identity

	set, ok := r.byIdentity[identity.ID]
	if !ok {
		set = make(map[string]*Client)
		r.byIdentity[identity.ID] = set
	}
	set[connID] = entry.client
	return nil
}

// SetRoom atomically swaps the connection's current room and returns the
// previous one, empty if the connection had not joined a room yet.
func (r *Registry) SetRoom(connID string, room RoomName) (RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	prev := entry.room
	entry.room = room
	return prev, true
}

// Remove deletes the connection and returns what it was bound to. A second
// removal of the same connection is a no-op, tolerating duplicate disconnect
// signals.
func (r *Registry) Remove(connID string) (identity *Identity, room RoomName, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.conns[connID]
	if !exists {
		return nil, "", false
	}
	delete(r.conns, connID)

	if entry.identity != nil {
		if set, ok := r.byIdentity[entry.identity.ID]; ok {
			delete(set, connID)
			if len(set) == 0 {
				delete(r.byIdentity, entry.identity.ID)
			}
		}
	}
	return entry.identity, entry.room, true
}

// IdentityOf returns the identity bound to a connection, nil if none.
func (r *Registry) IdentityOf(connID string) *Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.conns[connID]; ok {
		return entry.identity
	}
	return nil
}

// Online reports whether an identity has at least one live connection.
func (r *Registry) Online(identityID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byIdentity[identityID]) > 0
}

// OnlineIdentities returns a snapshot of online identities, collapsed to one
// entry per identity regardless of how many connections it holds.
func (r *Registry) OnlineIdentities() []Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	identities := make([]Identity, 0, len(r.byIdentity))
	seen := make(map[int64]struct{}, len(r.byIdentity))
	for _, entry := range r.conns {
		if entry.identity == nil {
			continue
		}
		if _, dup := seen[entry.identity.ID]; dup {
			continue
		}
		seen[entry.identity.ID] = struct{}{}
		identities = append(identities, *entry.identity)
	}
	sort.Slice(identities, func(i, j int) bool { return identities[i].ID < identities[j].ID })
	return identities
}

// ConnectionsFor returns every live connection of an identity, used for
// private-message delivery to all of a recipient's devices.
func (r *Registry) ConnectionsFor(identityID int64) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := make([]*Client, 0, len(r.byIdentity[identityID]))
	for _, c := range r.byIdentity[identityID] {
		clients = append(clients, c)
	}
	return clients
}

// MembersOf returns the connections whose current room equals room. Room
// membership is derived live; there is no persisted membership list.
func (r *Registry) MembersOf(room RoomName) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	var clients []*Client
	for _, entry := range r.conns {
		if entry.room == room && entry.room != "" {
			clients = append(clients, entry.client)
		}
	}
	return clients
}

// Clients returns every registered connection, authenticated or not.
func (r *Registry) Clients() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := make([]*Client, 0, len(r.conns))
	for _, entry := range r.conns {
		clients = append(clients, entry.client)
	}
	return clients
}
