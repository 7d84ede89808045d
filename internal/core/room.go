package core

import (
	"fmt"
	"strings"
)

// RoomName is a validated room identifier. Direct (private) rooms are built
// only through DirectRoom so both participants converge on the same name.
type RoomName string

const directRoomPrefix = "private_"

// ParseRoomName validates a client-supplied room name.
func ParseRoomName(s string) (RoomName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("room name is empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return "", fmt.Errorf("room name contains whitespace")
	}
	return RoomName(s), nil
}

// DirectRoom derives the private room name for a pair of identities.
// Identity ids are ordered numerically, so DirectRoom(a, b) == DirectRoom(b, a).
func DirectRoom(a, b int64) RoomName {
	if a > b {
		a, b = b, a
	}
	return RoomName(fmt.Sprintf("%s%d_%d", directRoomPrefix, a, b))
}

// IsDirect reports whether the room is a synthesized private pair room.
func (r RoomName) IsDirect() bool {
	return strings.HasPrefix(string(r), directRoomPrefix)
}

func (r RoomName) String() string {
	return string(r)
}
