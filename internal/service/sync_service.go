package service

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"dhobighar-backend/internal/model"
	"dhobighar-backend/internal/repository"
	"dhobighar-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// --- DTOs ---

// DrainResult summarizes one pass over the offline queue.
type DrainResult struct {
	Flushed int  `json:"flushed"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped"` // another drain pass was already running
}

// --- Interfaces ---

// ConnectivityProbe reports whether the remote store is reachable. The save
// and read paths check it proactively before attempting remote operations.
type ConnectivityProbe interface {
	IsConnected(ctx context.Context) bool
}

type dbProbe struct {
	db *gorm.DB
}

// NewDBProbe returns a probe that pings the underlying database connection.
func NewDBProbe(db *gorm.DB) ConnectivityProbe {
	return &dbProbe{db: db}
}

func (p *dbProbe) IsConnected(ctx context.Context) bool {
	sqlDB, err := p.db.DB()
	if err != nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx) == nil
}

// SyncService guarantees an invoice is not lost while offline: saves go to the
// remote store when connected and to the durable local queue otherwise, with a
// periodic drain flushing queued invoices once connectivity returns.
type SyncService interface {
	// SaveInvoice persists the invoice remotely when connected (assigning the
	// server-side sequential id) or queues it locally when not. A remote write
	// failure while connected is returned to the caller, not queued.
	SaveInvoice(ctx context.Context, invoice *model.Invoice) (string, error)
	// Drain runs one pass over the offline queue, removing exactly the items
	// that were saved remotely. Retries are unbounded; failed items stay
	// queued unchanged. Only one pass runs at a time; a concurrent call is
	// skipped, not deferred.
	Drain(ctx context.Context) DrainResult
	// GetInvoices prefers the authoritative remote list (overwriting the local
	// cache with it) and falls back to the cache when offline or on error.
	GetInvoices(ctx context.Context) ([]model.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	// StartScheduler drains once at startup and then on a fixed interval.
	StartScheduler()
	StopScheduler()
}

type syncService struct {
	invoiceRepo repository.InvoiceRepository
	counterRepo repository.CounterRepository
	txManager   repository.TransactionManager
	local       repository.LocalStore
	probe       ConnectivityProbe
	hub         *websocket.Hub

	draining atomic.Bool
	cron     *cron.Cron
}

func NewSyncService(
	invoiceRepo repository.InvoiceRepository,
	counterRepo repository.CounterRepository,
	txManager repository.TransactionManager,
	local repository.LocalStore,
	probe ConnectivityProbe,
	hub *websocket.Hub,
) SyncService {
	return &syncService{
		invoiceRepo: invoiceRepo,
		counterRepo: counterRepo,
		txManager:   txManager,
		local:       local,
		probe:       probe,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *syncService) SaveInvoice(ctx context.Context, invoice *model.Invoice) (string, error) {
	if !s.probe.IsConnected(ctx) {
		if err := s.enqueue(ctx, invoice); err != nil {
			return "", fmt.Errorf("failed to queue invoice: %w", err)
		}
		return invoice.ID, nil
	}

	if err := s.saveRemote(ctx, invoice); err != nil {
		return "", fmt.Errorf("failed to save invoice: %w", err)
	}
	return invoice.ID, nil
}

// enqueue appends a durable queue record and mirrors the invoice into the
// local cache so it is immediately visible in offline listings.
func (s *syncService) enqueue(ctx context.Context, invoice *model.Invoice) error {
	now := time.Now()
	item := model.QueueItem{
		ID:        fmt.Sprintf("queue_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Type:      model.QueueTypeInvoice,
		Data:      *invoice,
		Timestamp: now.UnixMilli(),
	}
	if err := s.local.AppendQueue(ctx, item); err != nil {
		return err
	}
	return s.local.PrependCachedInvoice(ctx, *invoice)
}

// saveRemote assigns the next server-side invoice id via the central counter
// and writes the invoice document, both inside one transaction. The invoice's
// provisional local id is replaced by the server-assigned one.
func (s *syncService) saveRemote(ctx context.Context, invoice *model.Invoice) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.counterRepo.Current(txCtx, model.CounterInvoiceID)
		if err != nil {
			return fmt.Errorf("failed to read invoice counter: %w", err)
		}
		next := current + 1
		invoice.ID = FormatInvoiceID(next)
		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to write invoice: %w", err)
		}
		if err := s.counterRepo.Set(txCtx, model.CounterInvoiceID, next); err != nil {
			return fmt.Errorf("failed to advance invoice counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.local.PrependCachedInvoice(ctx, *invoice); err != nil {
		log.Printf("Failed to update local invoice cache: %v", err)
	}
	return nil
}

func (s *syncService) Drain(ctx context.Context) DrainResult {
	if !s.draining.CompareAndSwap(false, true) {
		return DrainResult{Skipped: true}
	}
	defer s.draining.Store(false)

	var res DrainResult
	if !s.probe.IsConnected(ctx) {
		return res
	}

	queue, err := s.local.Queue(ctx)
	if err != nil {
		log.Printf("Failed to read offline queue: %v", err)
		return res
	}

	for _, item := range queue {
		if item.Type != model.QueueTypeInvoice {
			continue
		}
		invoice := item.Data
		if err := s.saveRemote(ctx, &invoice); err != nil {
			log.Printf("Failed to flush queued invoice %s: %v", item.ID, err)
			res.Failed++
			continue
		}
		if err := s.local.RemoveQueue(ctx, item.ID); err != nil {
			log.Printf("Failed to remove queue item %s: %v", item.ID, err)
		}
		res.Flushed++
	}

	if s.hub != nil && (res.Flushed > 0 || res.Failed > 0) {
		s.hub.BroadcastEvent(websocket.EventSyncDrain, res)
	}
	return res
}

func (s *syncService) GetInvoices(ctx context.Context) ([]model.Invoice, error) {
	cached, err := s.local.CachedInvoices(ctx)
	if err != nil {
		log.Printf("Failed to read local invoice cache: %v", err)
		cached = nil
	}

	if !s.probe.IsConnected(ctx) {
		return cached, nil
	}

	remote, err := s.invoiceRepo.ListByDateDesc(ctx)
	if err != nil {
		// Stale-cache fallback: a remote failure never loses the read path.
		log.Printf("Failed to fetch remote invoices, serving cache: %v", err)
		return cached, nil
	}

	if err := s.local.SetCachedInvoices(ctx, remote); err != nil {
		log.Printf("Failed to overwrite local invoice cache: %v", err)
	}
	return remote, nil
}

func (s *syncService) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	invoices, err := s.GetInvoices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID == id {
			return &invoices[i], nil
		}
	}
	return nil, fmt.Errorf("invoice %s not found", id)
}

func (s *syncService) StartScheduler() {
	go s.Drain(context.Background())

	s.cron = cron.New()
	_, err := s.cron.AddFunc("@every 30s", func() {
		s.Drain(context.Background())
	})
	if err != nil {
		log.Printf("Failed to schedule offline sync: %v", err)
		return
	}
	s.cron.Start()
	log.Println("Offline sync scheduler started")
}

func (s *syncService) StopScheduler() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
