package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: uuid.New(),
		send:   make(chan Envelope, 4),
		rooms:  make(map[string]struct{}),
		joined: make(map[string]struct{}),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// settle gives the hub loop time to drain pending registrations and joins
// before an emit races them.
func settle() {
	time.Sleep(20 * time.Millisecond)
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case env := <-c.send:
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for envelope")
		return Envelope{}
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case env := <-c.send:
		t.Fatalf("unexpected envelope: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := startHub(t)

	a := newTestClient()
	b := newTestClient()
	hub.register <- a
	hub.register <- b
	settle()

	hub.Emit(EventNewChat, map[string]string{"session_id": "chat_x"})

	for _, c := range []*Client{a, b} {
		env := receive(t, c)
		assert.Equal(t, EventNewChat, env.Event)
	}
}

func TestHub_RoomDeliveryIsScoped(t *testing.T) {
	hub := startHub(t)

	member := newTestClient()
	outsider := newTestClient()
	hub.register <- member
	hub.register <- outsider
	hub.join <- subscription{client: member, sessionID: "chat_room"}
	settle()

	hub.EmitRoom("chat_room", EventNewMessage, "hello")

	env := receive(t, member)
	assert.Equal(t, EventNewMessage, env.Event)
	expectNothing(t, outsider)
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := startHub(t)

	c := newTestClient()
	hub.register <- c
	hub.join <- subscription{client: c, sessionID: "chat_room"}
	hub.leave <- subscription{client: c, sessionID: "chat_room"}
	settle()

	hub.EmitRoom("chat_room", EventNewMessage, "hello")
	expectNothing(t, c)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t)

	slow := newTestClient()
	slow.send = make(chan Envelope) // unbuffered and never drained
	healthy := newTestClient()
	hub.register <- slow
	hub.register <- healthy
	settle()

	hub.Emit(EventChatAssigned, nil)

	// The healthy client still receives; the slow one is closed out.
	env := receive(t, healthy)
	assert.Equal(t, EventChatAssigned, env.Event)

	select {
	case _, open := <-slow.send:
		assert.False(t, open, "slow client's channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("slow client was not dropped")
	}
}

func TestHub_TypingRelayExcludesSender(t *testing.T) {
	hub := startHub(t)

	sender := newTestClient()
	peer := newTestClient()
	hub.register <- sender
	hub.register <- peer
	hub.join <- subscription{client: sender, sessionID: "chat_room"}
	hub.join <- subscription{client: peer, sessionID: "chat_room"}
	settle()

	hub.emitRoomExcept("chat_room", sender.ID, EventTyping, map[string]any{"is_typing": true})

	env := receive(t, peer)
	require.Equal(t, EventTyping, env.Event)
	expectNothing(t, sender)
}
