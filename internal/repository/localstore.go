package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dhobighar-backend/internal/model"
)

// Local store keys. The store is a flat key-value map persisted as JSON,
// mirroring the device-side storage layout.
const (
	keyOfflineQueue  = "offline_queue"
	keyLocalInvoices = "local_invoices"
	keyLastInvoiceID = "lastInvoiceId"
)

// LocalStore is the durable on-device key-value store backing the offline
// queue, the invoice read cache and the last locally issued invoice id.
type LocalStore interface {
	Queue(ctx context.Context) ([]model.QueueItem, error)
	AppendQueue(ctx context.Context, item model.QueueItem) error
	RemoveQueue(ctx context.Context, itemID string) error

	CachedInvoices(ctx context.Context) ([]model.Invoice, error)
	SetCachedInvoices(ctx context.Context, invoices []model.Invoice) error
	// PrependCachedInvoice puts an invoice at the front of the cache so it is
	// immediately visible in offline listings.
	PrependCachedInvoice(ctx context.Context, invoice model.Invoice) error

	LastInvoiceID(ctx context.Context) (string, error)
	SetLastInvoiceID(ctx context.Context, id string) error
}

// fileStore persists the key-value map to a single JSON file. All access is
// read-modify-write under one mutex; there is no transactional isolation
// beyond that, matching the original storage semantics.
type fileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a LocalStore backed by a JSON file at path. The parent
// directory is created if missing.
func NewFileStore(path string) (LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local store directory: %w", err)
	}
	return &fileStore{path: path}, nil
}

func (s *fileStore) load() (map[string]json.RawMessage, error) {
	data := map[string]json.RawMessage{}
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode local store: %w", err)
	}
	return data, nil
}

func (s *fileStore) save(data map[string]json.RawMessage) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode local store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func getKey[T any](data map[string]json.RawMessage, key string, zero T) (T, error) {
	raw, ok := data[key]
	if !ok {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("failed to decode key %q: %w", key, err)
	}
	return out, nil
}

func setKey(data map[string]json.RawMessage, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode key %q: %w", key, err)
	}
	data[key] = raw
	return nil
}

func (s *fileStore) Queue(_ context.Context) ([]model.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return getKey(data, keyOfflineQueue, []model.QueueItem{})
}

func (s *fileStore) AppendQueue(_ context.Context, item model.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	queue, err := getKey(data, keyOfflineQueue, []model.QueueItem{})
	if err != nil {
		return err
	}
	queue = append(queue, item)
	if err := setKey(data, keyOfflineQueue, queue); err != nil {
		return err
	}
	return s.save(data)
}

func (s *fileStore) RemoveQueue(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	queue, err := getKey(data, keyOfflineQueue, []model.QueueItem{})
	if err != nil {
		return err
	}
	kept := queue[:0]
	for _, item := range queue {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	if err := setKey(data, keyOfflineQueue, kept); err != nil {
		return err
	}
	return s.save(data)
}

func (s *fileStore) CachedInvoices(_ context.Context) ([]model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return getKey(data, keyLocalInvoices, []model.Invoice{})
}

func (s *fileStore) SetCachedInvoices(_ context.Context, invoices []model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	if err := setKey(data, keyLocalInvoices, invoices); err != nil {
		return err
	}
	return s.save(data)
}

func (s *fileStore) PrependCachedInvoice(_ context.Context, invoice model.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	cache, err := getKey(data, keyLocalInvoices, []model.Invoice{})
	if err != nil {
		return err
	}
	cache = append([]model.Invoice{invoice}, cache...)
	if err := setKey(data, keyLocalInvoices, cache); err != nil {
		return err
	}
	return s.save(data)
}

func (s *fileStore) LastInvoiceID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", err
	}
	return getKey(data, keyLastInvoiceID, "")
}

func (s *fileStore) SetLastInvoiceID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	if err := setKey(data, keyLastInvoiceID, id); err != nil {
		return err
	}
	return s.save(data)
}
