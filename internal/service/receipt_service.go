package service

import (
	"context"
	"strings"

	"github.com/cipherdrop/relay-service/internal/domain"
	"github.com/cipherdrop/relay-service/internal/memstore"
)

type ReceiptService struct {
	receipts *memstore.ReceiptRepository
	events   RelayEvents
}

func NewReceiptService(receipts *memstore.ReceiptRepository, events RelayEvents) *ReceiptService {
	return &ReceiptService{receipts: receipts, events: events}
}

// AppendReceipt records a delivery or read receipt for a message.
func (s *ReceiptService) AppendReceipt(ctx context.Context, roomID, messageID, recipientID, receiptType string) (domain.Receipt, error) {
	roomID = domain.NormalizeRoomID(roomID)
	messageID = strings.TrimSpace(messageID)
	recipientID = strings.TrimSpace(recipientID)
	receiptType = strings.TrimSpace(receiptType)
	if roomID == "" || messageID == "" || recipientID == "" || receiptType == "" {
		return domain.Receipt{}, domain.ErrInvalidInput
	}

	rc, err := s.receipts.Append(roomID, messageID, recipientID, receiptType)
	if err != nil {
		return domain.Receipt{}, err
	}
	if s.events != nil {
		s.events.ReceiptStored(rc)
	}
	return rc, nil
}

// ListReceipts returns the room's receipts inside the visibility window.
func (s *ReceiptService) ListReceipts(ctx context.Context, roomID string) ([]domain.Receipt, error) {
	return s.receipts.ListVisible(domain.NormalizeRoomID(roomID))
}

// PruneOld deletes receipts past the retention horizon across all rooms and
// returns the count removed.
func (s *ReceiptService) PruneOld(ctx context.Context) int {
	return s.receipts.Prune()
}
