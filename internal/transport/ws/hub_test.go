package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/cipherdrop/relay-service/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	roomID string
	userID string
	got    []Message
}

func (c *fakeConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, msg)
	return nil
}

func (c *fakeConn) Close() error   { return nil }
func (c *fakeConn) RoomID() string { return c.roomID }
func (c *fakeConn) UserID() string { return c.userID }

func (c *fakeConn) received() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.got))
	copy(out, c.got)
	return out
}

func TestHubBroadcast_RoomScoped(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{roomID: "LOBBY", userID: "u1"}
	b := &fakeConn{roomID: "LOBBY", userID: "u2"}
	other := &fakeConn{roomID: "OTHER", userID: "u3"}
	hub.Add(a)
	hub.Add(b)
	hub.Add(other)

	hub.Broadcast("LOBBY", Message{Type: TypeMessage})

	if len(a.received()) != 1 || len(b.received()) != 1 {
		t.Fatalf("room members must receive the broadcast: %d/%d", len(a.received()), len(b.received()))
	}
	if len(other.received()) != 0 {
		t.Fatalf("broadcast leaked into another room")
	}
}

func TestHubSendToUser_RecipientOnly(t *testing.T) {
	hub := NewHub()
	u2a := &fakeConn{roomID: "LOBBY", userID: "u2"}
	u2b := &fakeConn{roomID: "LOBBY", userID: "u2"}
	u3 := &fakeConn{roomID: "LOBBY", userID: "u3"}
	hub.Add(u2a)
	hub.Add(u2b)
	hub.Add(u3)

	hub.SendToUser("LOBBY", "u2", Message{Type: TypeE2EE})

	if len(u2a.received()) != 1 || len(u2b.received()) != 1 {
		t.Fatalf("every connection of the recipient must get the record")
	}
	if len(u3.received()) != 0 {
		t.Fatalf("directed record reached a non-recipient")
	}
}

func TestHubRemove(t *testing.T) {
	hub := NewHub()
	c := &fakeConn{roomID: "LOBBY", userID: "u1"}
	hub.Add(c)
	hub.Remove(c)

	hub.Broadcast("LOBBY", Message{Type: TypeMessage})
	if len(c.received()) != 0 {
		t.Fatalf("removed connection must not receive messages")
	}
}

func TestServerEvents_MapToFrames(t *testing.T) {
	hub := NewHub()
	srv := NewServer(hub, nil)

	u2 := &fakeConn{roomID: "LOBBY", userID: "u2"}
	u3 := &fakeConn{roomID: "LOBBY", userID: "u3"}
	hub.Add(u2)
	hub.Add(u3)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	srv.BroadcastStored(domain.Message{
		ID: "m1", RoomID: "LOBBY", SenderID: "u1", Body: "hi",
		CreatedAt: now, ExpiresAt: now.Add(domain.DefaultMessageTTL),
	})
	srv.DirectedStored(domain.DirectedMessage{
		ID: "r1", MessageID: "m2", RoomID: "LOBBY", SenderID: "u1",
		RecipientID: "u2", EncryptedData: "blob", CreatedAt: now,
	})
	srv.ReceiptStored(domain.Receipt{
		RoomID: "LOBBY", MessageID: "m1", RecipientID: "u2", Type: "read", CreatedAt: now,
	})

	gotU2 := u2.received()
	if len(gotU2) != 3 {
		t.Fatalf("u2 expected broadcast+directed+receipt, got %d frames", len(gotU2))
	}
	if gotU2[0].Type != TypeMessage || gotU2[1].Type != TypeE2EE || gotU2[2].Type != TypeReceipt {
		t.Fatalf("unexpected frame types: %+v", gotU2)
	}

	gotU3 := u3.received()
	if len(gotU3) != 2 {
		t.Fatalf("u3 must not get the directed frame, got %d", len(gotU3))
	}
	for _, f := range gotU3 {
		if f.Type == TypeE2EE {
			t.Fatalf("directed frame leaked to u3")
		}
	}
}
