package store

import (
	"sync"
	"time"

	"github.com/stoyanh/receipt-scanner/dto"
)

// ReceiptStore is an in-memory, append-only record of analyzed receipts.
// Records live for the lifetime of the process; there is no update or
// delete. Ids are assigned atomically and never reused.
type ReceiptStore struct {
	mu       sync.Mutex
	receipts map[int]dto.Receipt
	order    []int
	nextID   int
}

func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{
		receipts: make(map[int]dto.Receipt),
		nextID:   1,
	}
}

// Create assigns an id and ProcessedAt timestamp and stores the receipt.
func (s *ReceiptStore) Create(receipt dto.Receipt) dto.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipt.ID = s.nextID
	s.nextID++
	receipt.ProcessedAt = time.Now()

	s.receipts[receipt.ID] = receipt
	s.order = append(s.order, receipt.ID)
	return receipt
}

// Get fetches a receipt by id.
func (s *ReceiptStore) Get(id int) (dto.Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, ok := s.receipts[id]
	return receipt, ok
}

// List returns all receipts in insertion order.
func (s *ReceiptStore) List() []dto.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dto.Receipt, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.receipts[id])
	}
	return out
}

// Len reports the number of stored receipts.
func (s *ReceiptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
