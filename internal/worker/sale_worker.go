package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/backend"
	"salesdash/internal/core"
	"salesdash/internal/log"
)

// DashboardFetcher runs one aggregation against the records backend.
type DashboardFetcher interface {
	FetchDashboard(ctx context.Context) (core.Dashboard, error)
}

// SnapshotSaver persists the latest dashboard views.
type SnapshotSaver interface {
	Save(ctx context.Context, d core.Dashboard) error
}

// SaleMirror copies a sale into a secondary store under its original id.
type SaleMirror interface {
	AppendSale(ctx context.Context, id string, d core.SaleDraft) (string, error)
}

// SaleWorker reacts to sale-created events: it mirrors the sale when a
// mirror is configured and refreshes the shared snapshot.
type SaleWorker struct {
	fetcher   DashboardFetcher
	snapshots SnapshotSaver
	mirror    SaleMirror

	// Refreshes are serialized so the last completed fetch wins.
	refreshMu sync.Mutex
}

// NewSaleWorker builds a worker. mirror may be nil.
func NewSaleWorker(fetcher DashboardFetcher, snapshots SnapshotSaver, mirror SaleMirror) *SaleWorker {
	return &SaleWorker{
		fetcher:   fetcher,
		snapshots: snapshots,
		mirror:    mirror,
	}
}

// HandleSaleCreated processes one event. A mirror failure is returned so the
// message is requeued; a refresh failure is only logged because the next
// scheduled refresh repairs it.
func (w *SaleWorker) HandleSaleCreated(ctx context.Context, ev *amqp.SaleCreatedEvent) error {
	slog.InfoContext(ctx, "Processing sale created event",
		log.FieldComponent, log.ComponentWorker,
		log.FieldRecordID, ev.RecordID,
		log.FieldBackend, ev.Backend)

	if w.mirror != nil && ev.Backend != backend.SheetsBackend.String() {
		ref, err := w.mirror.AppendSale(ctx, ev.RecordID, ev.Sale)
		if err != nil {
			return fmt.Errorf("mirror sale %s: %w", ev.RecordID, err)
		}
		slog.InfoContext(ctx, "Sale mirrored to Google Sheets",
			log.FieldComponent, log.ComponentSheets,
			log.FieldOperation, log.OpMirror,
			log.FieldRecordID, ev.RecordID,
			"range", ref)
	}

	if err := w.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Snapshot refresh after sale failed",
			log.FieldComponent, log.ComponentWorker,
			log.FieldRecordID, ev.RecordID,
			log.FieldError, err)
	}
	return nil
}

// Refresh fetches and aggregates all sales, then saves the snapshot.
func (w *SaleWorker) Refresh(ctx context.Context) error {
	w.refreshMu.Lock()
	defer w.refreshMu.Unlock()

	start := time.Now()
	dash, err := w.fetcher.FetchDashboard(ctx)
	if err != nil {
		return fmt.Errorf("fetch dashboard: %w", err)
	}
	if err := w.snapshots.Save(ctx, dash); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Snapshot refreshed",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpRefresh,
		"months", len(dash.Monthly),
		"products", len(dash.Products),
		"orders", len(dash.Orders),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}
