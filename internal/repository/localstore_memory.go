package repository

import (
	"context"
	"sync"

	"dhobighar-backend/internal/model"
)

// memoryStore is an in-memory LocalStore used by tests and dev/demo mode.
type memoryStore struct {
	mu            sync.RWMutex
	queue         []model.QueueItem
	cache         []model.Invoice
	lastInvoiceID string
}

func NewMemoryStore() LocalStore {
	return &memoryStore{}
}

func (s *memoryStore) Queue(_ context.Context) ([]model.QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.QueueItem, len(s.queue))
	copy(out, s.queue)
	return out, nil
}

func (s *memoryStore) AppendQueue(_ context.Context, item model.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, item)
	return nil
}

func (s *memoryStore) RemoveQueue(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.queue[:0]
	for _, item := range s.queue {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.queue = kept
	return nil
}

func (s *memoryStore) CachedInvoices(_ context.Context) ([]model.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Invoice, len(s.cache))
	copy(out, s.cache)
	return out, nil
}

func (s *memoryStore) SetCachedInvoices(_ context.Context, invoices []model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make([]model.Invoice, len(invoices))
	copy(s.cache, invoices)
	return nil
}

func (s *memoryStore) PrependCachedInvoice(_ context.Context, invoice model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = append([]model.Invoice{invoice}, s.cache...)
	return nil
}

func (s *memoryStore) LastInvoiceID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastInvoiceID, nil
}

func (s *memoryStore) SetLastInvoiceID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastInvoiceID = id
	return nil
}
