package core

import "testing"

func TestRegistryAuthenticateTwiceFails(t *testing.T) {
	r := NewRegistry()
	c := NewClient("c1")
	r.Register(c)

	if err := r.Authenticate("c1", Identity{ID: 1, Name: "alice"}); err != nil {
		t.Fatalf("first authenticate: %v", err)
	}
	err := r.Authenticate("c1", Identity{ID: 1, Name: "alice"})
	if err == nil {
		t.Fatal("expected error on second authenticate")
	}
}

func TestRegistryMultiDeviceCollapsesToOneIdentity(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"c1", "c2"} {
		c := NewClient(id)
		r.Register(c)
		if err := r.Authenticate(id, Identity{ID: 1, Name: "alice"}); err != nil {
			t.Fatalf("authenticate %s: %v", id, err)
		}
	}

	online := r.OnlineIdentities()
	if len(online) != 1 || online[0].Name != "alice" {
		t.Fatalf("expected single alice entry, got %+v", online)
	}
	if got := len(r.ConnectionsFor(1)); got != 2 {
		t.Fatalf("expected 2 connections for identity, got %d", got)
	}

	// One device disconnects; the identity stays online.
	r.Remove("c1")
	if !r.Online(1) {
		t.Fatal("identity should remain online with one connection left")
	}
	r.Remove("c2")
	if r.Online(1) {
		t.Fatal("identity should be offline with no connections")
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := NewClient("c1")
	r.Register(c)

	if _, _, ok := r.Remove("c1"); !ok {
		t.Fatal("first remove should report removal")
	}
	if _, _, ok := r.Remove("c1"); ok {
		t.Fatal("second remove should be a no-op")
	}
	// Removing a connection that never existed is also a no-op.
	if _, _, ok := r.Remove("ghost"); ok {
		t.Fatal("removing unknown connection should be a no-op")
	}
}

func TestRegistrySetRoomReturnsPrevious(t *testing.T) {
	r := NewRegistry()
	c := NewClient("c1")
	r.Register(c)

	prev, ok := r.SetRoom("c1", "general")
	if !ok || prev != "" {
		t.Fatalf("expected empty previous room, got %q ok=%v", prev, ok)
	}
	prev, ok = r.SetRoom("c1", "random")
	if !ok || prev != "general" {
		t.Fatalf("expected previous room general, got %q ok=%v", prev, ok)
	}

	members := r.MembersOf("random")
	if len(members) != 1 || members[0].ID != "c1" {
		t.Fatalf("unexpected membership: %+v", members)
	}
	if len(r.MembersOf("general")) != 0 {
		t.Fatal("connection should have left the previous room")
	}
}

func TestRegistryUnauthenticatedNotListed(t *testing.T) {
	r := NewRegistry()
	c := NewClient("c1")
	r.Register(c)

	if len(r.OnlineIdentities()) != 0 {
		t.Fatal("unauthenticated connection must not appear in presence")
	}
	if len(r.Clients()) != 1 {
		t.Fatal("connection should still be registered")
	}
}
