package http

import (
	"context"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/velichkin/parley-server/internal/proto"
)

// Temporary debug test: dump every raw frame bob receives.
func TestZZDebugRawFrames(t *testing.T) {
	ts := startTestServer(t)
	aliceToken := ts.register(t, "alice", "password")
	bobToken := ts.register(t, "bob", "password")

	alice := ts.dialWS(t)
	alice.authenticateAndLogin(t, aliceToken)

	bob := ts.dialWS(t)
	bob.send(t, proto.InboundTypeAuthenticate, proto.AuthenticateData{Token: bobToken})
	bob.send(t, proto.InboundTypeLogin, nil)

	alice.send(t, proto.InboundTypeSendMessage, proto.SendMessageData{Content: "hello bob"})

	for i := 0; i < 6; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		typ, data, err := bob.conn.Read(ctx)
		cancel()
		if err != nil {
			t.Logf("frame %d: read error: %v", i, err)
			break
		}
		t.Logf("frame %d: type=%v payload=%s", i, typ, data)
	}
}
