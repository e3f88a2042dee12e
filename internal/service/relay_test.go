package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cipherdrop/relay-service/internal/domain"
	"github.com/cipherdrop/relay-service/internal/memstore"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type relayFixture struct {
	clock    *fakeClock
	rooms    *RoomService
	keys     *KeyService
	messages *MessageService
	receipts *ReceiptService
	stats    *Stats
	msgRepo  *memstore.MessageRepository
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	roomRepo := memstore.NewRoomRepository(clk.Now)
	keyRepo := memstore.NewKeyRepository(clk.Now)
	msgRepo := memstore.NewMessageRepository(clk.Now, domain.DefaultMessageTTL)
	receiptRepo := memstore.NewReceiptRepository(clk.Now, domain.ReceiptVisibility, domain.ReceiptRetention)
	stats := NewStats()

	return &relayFixture{
		clock:    clk,
		rooms:    NewRoomService(roomRepo, msgRepo, receiptRepo, stats),
		keys:     NewKeyService(roomRepo, keyRepo),
		messages: NewMessageService(roomRepo, msgRepo, stats, nil),
		receipts: NewReceiptService(receiptRepo, nil),
		stats:    stats,
		msgRepo:  msgRepo,
	}
}

func TestRoomIDNormalization(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	if _, err := f.rooms.CreateRoom(ctx, "abc", "u1", true); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Identifier variants must collide onto the same room.
	if err := f.rooms.JoinRoom(ctx, "ABC ", "u2"); err != nil {
		t.Fatalf("join with variant id: %v", err)
	}
	info, err := f.rooms.DescribeRoom(ctx, " abc")
	if err != nil {
		t.Fatalf("describe with variant id: %v", err)
	}
	if info.MemberCount != 2 {
		t.Fatalf("expected 2 members, got %d", info.MemberCount)
	}
}

func TestCreateRoom_MissingFields(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()
	if _, err := f.rooms.CreateRoom(ctx, "", "u1", false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.rooms.CreateRoom(ctx, "LOBBY", "  ", false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSendToMissingRoom_NoSideEffects(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	if _, err := f.messages.SendBroadcast(ctx, "GHOST", "u1", "hello", time.Time{}); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := f.messages.SendDirected(ctx, "GHOST", "u1", map[string]string{"u2": "x"}, time.Time{}); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := f.keys.StoreRoomKey(ctx, "GHOST", "wrapped"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := f.keys.PublishPublicKey(ctx, "GHOST", "u1", "pub"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := f.receipts.AppendReceipt(ctx, "GHOST", "m1", "u1", "read"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	// Nothing may have been created anywhere.
	if f.rooms.RoomExists(ctx, "GHOST") {
		t.Fatal("failed sends must not create the room")
	}
	if f.stats.Messages() != 0 || f.stats.DirectedMessages() != 0 || f.stats.Rooms() != 0 {
		t.Fatal("failed sends must not bump counters")
	}
}

func TestPublishPublicKey_AddsMembership(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()
	if _, err := f.rooms.CreateRoom(ctx, "LOBBY", "u1", true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.keys.PublishPublicKey(ctx, "lobby", "u2", "pub-u2"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	members, err := f.keys.ListMembers(ctx, "LOBBY")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	byUser := map[string]string{}
	for _, m := range members {
		byUser[m.UserID] = m.PublicKey
	}
	if byUser["u2"] != "pub-u2" {
		t.Fatalf("u2 key missing: %+v", byUser)
	}
	// The host never registered a key; the listing still carries the row.
	if byUser["u1"] != "" {
		t.Fatalf("u1 should have no key on file, got %q", byUser["u1"])
	}
}

func TestDirectedSend_EmptyPayloads(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()
	if _, err := f.rooms.CreateRoom(ctx, "LOBBY", "u1", true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.messages.SendDirected(ctx, "LOBBY", "u1", map[string]string{}, time.Time{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// End-to-end: create LOBBY, join u2, directed send with the default
// expiry, read back, then let the 24h window elapse on a simulated clock.
func TestDirectedLifecycle(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	if _, err := f.rooms.CreateRoom(ctx, "LOBBY", "u1", true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.rooms.JoinRoom(ctx, "LOBBY", "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}
	records, err := f.messages.SendDirected(ctx, "LOBBY", "u1", map[string]string{"u2": "blob1"}, time.Time{})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got, err := f.messages.ListDirected(ctx, "LOBBY", "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].EncryptedData != "blob1" {
		t.Fatalf("u2 must receive exactly blob1, got %+v", got)
	}

	// Sender is not a recipient of their own fan-out.
	forSender, _ := f.messages.ListDirected(ctx, "LOBBY", "u1")
	if len(forSender) != 0 {
		t.Fatalf("sender must not see directed records, got %+v", forSender)
	}

	f.clock.Advance(24*time.Hour + time.Second)
	after, err := f.messages.ListDirected(ctx, "LOBBY", "u2")
	if err != nil {
		t.Fatalf("list after expiry: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("records must be gone after the default window, got %+v", after)
	}
}

func TestStatsCounters(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	if _, err := f.rooms.CreateRoom(ctx, "LOBBY", "u1", true); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Re-create does not double count.
	if _, err := f.rooms.CreateRoom(ctx, "LOBBY", "u1", true); err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if _, err := f.messages.SendBroadcast(ctx, "LOBBY", "u1", "hi", time.Time{}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := f.messages.SendDirected(ctx, "LOBBY", "u1", map[string]string{"u2": "x"}, time.Time{}); err != nil {
		t.Fatalf("send directed: %v", err)
	}

	if f.stats.Rooms() != 1 {
		t.Fatalf("rooms counter: got %d", f.stats.Rooms())
	}
	if f.stats.Messages() != 1 || f.stats.DirectedMessages() != 1 {
		t.Fatalf("message counters: %d/%d", f.stats.Messages(), f.stats.DirectedMessages())
	}
}

func TestSweeperStopsOnCancel(t *testing.T) {
	f := newRelayFixture(t)
	sweeper := NewSweeper(f.msgRepo, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
