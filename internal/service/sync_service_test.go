package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dhobighar-backend/internal/model"
	"dhobighar-backend/internal/repository"

	"github.com/stretchr/testify/require"
)

// --- Fakes ---------------------------------------------------------------

type fakeInvoiceRepo struct {
	saved   []model.Invoice
	listed  []model.Invoice
	failOn  map[string]bool // customer name -> fail Create
	listErr error
}

func (f *fakeInvoiceRepo) Create(_ context.Context, invoice *model.Invoice) error {
	if f.failOn[invoice.CustomerName] {
		return errors.New("write refused")
	}
	f.saved = append(f.saved, *invoice)
	return nil
}

func (f *fakeInvoiceRepo) FindByID(_ context.Context, id string) (*model.Invoice, error) {
	for i := range f.saved {
		if f.saved[i].ID == id {
			return &f.saved[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeInvoiceRepo) ListByDateDesc(_ context.Context) ([]model.Invoice, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

type fakeCounterRepo struct {
	value int64
}

func (f *fakeCounterRepo) Current(_ context.Context, _ string) (int64, error) { return f.value, nil }
func (f *fakeCounterRepo) Set(_ context.Context, _ string, v int64) error {
	f.value = v
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeProbe struct {
	connected bool
}

func (f *fakeProbe) IsConnected(context.Context) bool { return f.connected }

func newTestSync(probe *fakeProbe, invoiceRepo *fakeInvoiceRepo, counterRepo *fakeCounterRepo) (SyncService, repository.LocalStore) {
	local := repository.NewMemoryStore()
	svc := NewSyncService(invoiceRepo, counterRepo, fakeTxManager{}, local, probe, nil)
	return svc, local
}

func testInvoice(id, customer string) *model.Invoice {
	return &model.Invoice{
		ID:           id,
		CustomerName: customer,
		Phone:        "919876543210",
		Date:         time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Total:        dec("100"),
	}
}

// --- Tests ---------------------------------------------------------------

func TestSaveInvoiceOffline(t *testing.T) {
	probe := &fakeProbe{connected: false}
	invoiceRepo := &fakeInvoiceRepo{}
	svc, local := newTestSync(probe, invoiceRepo, &fakeCounterRepo{})
	ctx := context.Background()

	id, err := svc.SaveInvoice(ctx, testInvoice("MA000007", "Asha"))
	require.NoError(t, err)
	require.Equal(t, "MA000007", id, "offline save keeps the provisional id")

	require.Empty(t, invoiceRepo.saved, "nothing written remotely while offline")

	queue, err := local.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, model.QueueTypeInvoice, queue[0].Type)
	require.Equal(t, "MA000007", queue[0].Data.ID)
	require.NotEmpty(t, queue[0].ID)

	cached, err := local.CachedInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1, "queued invoice is immediately visible in the cache")
	require.Equal(t, "MA000007", cached[0].ID)
}

func TestSaveInvoiceOnlineAssignsServerID(t *testing.T) {
	probe := &fakeProbe{connected: true}
	invoiceRepo := &fakeInvoiceRepo{}
	counterRepo := &fakeCounterRepo{value: 41}
	svc, local := newTestSync(probe, invoiceRepo, counterRepo)
	ctx := context.Background()

	id, err := svc.SaveInvoice(ctx, testInvoice("MA000007", "Asha"))
	require.NoError(t, err)
	require.Equal(t, "MA000042", id, "server counter overrides the provisional id")

	require.Len(t, invoiceRepo.saved, 1)
	require.Equal(t, "MA000042", invoiceRepo.saved[0].ID)
	require.EqualValues(t, 42, counterRepo.value)

	queue, err := local.Queue(ctx)
	require.NoError(t, err)
	require.Empty(t, queue, "online saves never touch the queue")

	cached, err := local.CachedInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
}

func TestSaveInvoiceOnlineFailureNotQueued(t *testing.T) {
	probe := &fakeProbe{connected: true}
	invoiceRepo := &fakeInvoiceRepo{failOn: map[string]bool{"Asha": true}}
	svc, local := newTestSync(probe, invoiceRepo, &fakeCounterRepo{})
	ctx := context.Background()

	_, err := svc.SaveInvoice(ctx, testInvoice("MA000007", "Asha"))
	require.Error(t, err)

	queue, qerr := local.Queue(ctx)
	require.NoError(t, qerr)
	require.Empty(t, queue, "a connected write failure is surfaced, not queued")
}

func TestDrainFlushesQueueInOrder(t *testing.T) {
	probe := &fakeProbe{connected: false}
	invoiceRepo := &fakeInvoiceRepo{}
	counterRepo := &fakeCounterRepo{}
	svc, local := newTestSync(probe, invoiceRepo, counterRepo)
	ctx := context.Background()

	_, err := svc.SaveInvoice(ctx, testInvoice("MA000001", "First"))
	require.NoError(t, err)
	_, err = svc.SaveInvoice(ctx, testInvoice("MA000002", "Second"))
	require.NoError(t, err)

	probe.connected = true
	res := svc.Drain(ctx)
	require.Equal(t, 2, res.Flushed)
	require.Zero(t, res.Failed)
	require.False(t, res.Skipped)

	require.Len(t, invoiceRepo.saved, 2)
	require.Equal(t, "First", invoiceRepo.saved[0].CustomerName)
	require.Equal(t, "Second", invoiceRepo.saved[1].CustomerName)
	require.Equal(t, "MA000001", invoiceRepo.saved[0].ID, "server ids issued in queue order")
	require.Equal(t, "MA000002", invoiceRepo.saved[1].ID)

	queue, err := local.Queue(ctx)
	require.NoError(t, err)
	require.Empty(t, queue)
}

func TestDrainKeepsFailedItemsQueued(t *testing.T) {
	probe := &fakeProbe{connected: false}
	invoiceRepo := &fakeInvoiceRepo{failOn: map[string]bool{"Bad": true}}
	svc, local := newTestSync(probe, invoiceRepo, &fakeCounterRepo{})
	ctx := context.Background()

	_, err := svc.SaveInvoice(ctx, testInvoice("MA000001", "Good"))
	require.NoError(t, err)
	_, err = svc.SaveInvoice(ctx, testInvoice("MA000002", "Bad"))
	require.NoError(t, err)

	probe.connected = true
	res := svc.Drain(ctx)
	require.Equal(t, 1, res.Flushed)
	require.Equal(t, 1, res.Failed)

	queue, err := local.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1, "only the flushed item is removed")
	require.Equal(t, "Bad", queue[0].Data.CustomerName)

	// Next pass retries the survivor; retries are unbounded.
	invoiceRepo.failOn = nil
	res = svc.Drain(ctx)
	require.Equal(t, 1, res.Flushed)
	queue, err = local.Queue(ctx)
	require.NoError(t, err)
	require.Empty(t, queue)
}

func TestDrainWhileOfflineIsNoop(t *testing.T) {
	probe := &fakeProbe{connected: false}
	svc, _ := newTestSync(probe, &fakeInvoiceRepo{}, &fakeCounterRepo{})

	ctx := context.Background()
	_, err := svc.SaveInvoice(ctx, testInvoice("MA000001", "Asha"))
	require.NoError(t, err)

	res := svc.Drain(ctx)
	require.Zero(t, res.Flushed)
	require.Zero(t, res.Failed)
	require.False(t, res.Skipped)
}

func TestGetInvoicesRemoteOverwritesCache(t *testing.T) {
	probe := &fakeProbe{connected: true}
	invoiceRepo := &fakeInvoiceRepo{listed: []model.Invoice{
		*testInvoice("MA000002", "Newer"),
		*testInvoice("MA000001", "Older"),
	}}
	svc, local := newTestSync(probe, invoiceRepo, &fakeCounterRepo{})
	ctx := context.Background()

	require.NoError(t, local.SetCachedInvoices(ctx, []model.Invoice{*testInvoice("MA000099", "Stale")}))

	invoices, err := svc.GetInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	require.Equal(t, "MA000002", invoices[0].ID)

	cached, err := local.CachedInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 2, "remote list overwrites the cache wholesale")
	require.Equal(t, "MA000002", cached[0].ID)
}

func TestGetInvoicesFallsBackToCache(t *testing.T) {
	ctx := context.Background()

	t.Run("offline serves cache", func(t *testing.T) {
		probe := &fakeProbe{connected: false}
		svc, local := newTestSync(probe, &fakeInvoiceRepo{}, &fakeCounterRepo{})
		require.NoError(t, local.SetCachedInvoices(ctx, []model.Invoice{*testInvoice("MA000001", "Asha")}))

		invoices, err := svc.GetInvoices(ctx)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		require.Equal(t, "MA000001", invoices[0].ID)
	})

	t.Run("remote error serves stale cache", func(t *testing.T) {
		probe := &fakeProbe{connected: true}
		invoiceRepo := &fakeInvoiceRepo{listErr: errors.New("timeout")}
		svc, local := newTestSync(probe, invoiceRepo, &fakeCounterRepo{})
		require.NoError(t, local.SetCachedInvoices(ctx, []model.Invoice{*testInvoice("MA000001", "Asha")}))

		invoices, err := svc.GetInvoices(ctx)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
	})
}

func TestGetInvoiceByID(t *testing.T) {
	probe := &fakeProbe{connected: true}
	invoiceRepo := &fakeInvoiceRepo{listed: []model.Invoice{*testInvoice("MA000005", "Asha")}}
	svc, _ := newTestSync(probe, invoiceRepo, &fakeCounterRepo{})
	ctx := context.Background()

	inv, err := svc.GetInvoice(ctx, "MA000005")
	require.NoError(t, err)
	require.Equal(t, "Asha", inv.CustomerName)

	_, err = svc.GetInvoice(ctx, "MA999999")
	require.Error(t, err)
}

func TestDrainGuardSkipsConcurrentPass(t *testing.T) {
	probe := &fakeProbe{connected: true}
	raw := NewSyncService(&fakeInvoiceRepo{}, &fakeCounterRepo{}, fakeTxManager{}, repository.NewMemoryStore(), probe, nil)
	svc := raw.(*syncService)

	svc.draining.Store(true)
	res := svc.Drain(context.Background())
	require.True(t, res.Skipped)

	svc.draining.Store(false)
	res = svc.Drain(context.Background())
	require.False(t, res.Skipped)
}
