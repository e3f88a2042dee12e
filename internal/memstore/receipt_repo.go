package memstore

import (
	"sync"
	"time"

	"github.com/cipherdrop/relay-service/internal/domain"
)

// ReceiptRepository keeps a per-room append-only receipt log. Reads are
// filtered to a rolling visibility window; deletion happens only through
// the explicit prune with its own, longer horizon.
type ReceiptRepository struct {
	mu         sync.RWMutex
	logs       map[string][]domain.Receipt
	clock      Clock
	visibility time.Duration
	retention  time.Duration
}

func NewReceiptRepository(clock Clock, visibility, retention time.Duration) *ReceiptRepository {
	if visibility <= 0 {
		visibility = domain.ReceiptVisibility
	}
	if retention <= 0 {
		retention = domain.ReceiptRetention
	}
	return &ReceiptRepository{
		logs:       make(map[string][]domain.Receipt),
		clock:      orNow(clock),
		visibility: visibility,
		retention:  retention,
	}
}

// EnsureRoom initializes the room's log. Appends refuse rooms that were
// never created.
func (r *ReceiptRepository) EnsureRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[roomID]; !ok {
		r.logs[roomID] = []domain.Receipt{}
	}
}

func (r *ReceiptRepository) Append(roomID, messageID, recipientID, receiptType string) (domain.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[roomID]
	if !ok {
		return domain.Receipt{}, domain.ErrRoomNotFound
	}
	rc := domain.Receipt{
		RoomID:      roomID,
		MessageID:   messageID,
		RecipientID: recipientID,
		Type:        receiptType,
		CreatedAt:   r.clock(),
	}
	r.logs[roomID] = append(log, rc)
	return rc, nil
}

// ListVisible returns entries within the visibility window, ascending by
// creation instant. The underlying log is not mutated: entries older than
// the window stay in memory until Prune runs.
func (r *ReceiptRepository) ListVisible(roomID string) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log, ok := r.logs[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cutoff := r.clock().Add(-r.visibility)
	out := make([]domain.Receipt, 0, len(log))
	for _, rc := range log {
		if rc.CreatedAt.After(cutoff) {
			out = append(out, rc)
		}
	}
	return out, nil
}

// Prune deletes entries older than the retention horizon across all rooms
// and returns how many were removed.
func (r *ReceiptRepository) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.clock().Add(-r.retention)
	removed := 0
	for roomID, log := range r.logs {
		kept := log[:0]
		for _, rc := range log {
			if rc.CreatedAt.After(cutoff) {
				kept = append(kept, rc)
				continue
			}
			removed++
		}
		r.logs[roomID] = kept
	}
	return removed
}

// Size reports the total number of retained entries, including entries past
// the visibility window that have not been pruned yet.
func (r *ReceiptRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, log := range r.logs {
		total += len(log)
	}
	return total
}
