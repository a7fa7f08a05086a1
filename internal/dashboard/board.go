// Package dashboard holds the presentation-layer state: the current views,
// where they came from, the cache fallback and the optimistic submit path.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/snapshot"
)

// SalesAPI is the gateway surface the board needs.
type SalesAPI interface {
	FetchSales(ctx context.Context) (core.Dashboard, error)
	CreateSale(ctx context.Context, d core.SaleDraft) (string, error)
}

// Source tells where the current views came from.
type Source string

const (
	SourceNone  Source = ""
	SourceLive  Source = "live"
	SourceCache Source = "cache"
)

// State is what the presentation layer renders. Err is set only in the
// error state, when neither a fetch nor a fresh snapshot was available.
type State struct {
	Dashboard core.Dashboard
	Source    Source
	Err       error
	UpdatedAt time.Time
}

// SubmitResult describes an accepted submission. Confirmed is false when the
// gateway rejected or failed the create; the local update is applied anyway.
type SubmitResult struct {
	RecordID  string
	Confirmed bool
	Order     core.OrderEntry
}

type Board struct {
	api     SalesAPI
	cache   *snapshot.Cache
	aggOpts []core.Option
	now     func() time.Time

	mu    sync.Mutex
	state State
}

type BoardOption func(*Board)

// WithAggregateOptions is forwarded to the optimistic update.
func WithAggregateOptions(opts ...core.Option) BoardOption {
	return func(b *Board) { b.aggOpts = append(b.aggOpts, opts...) }
}

// WithClock replaces time.Now for UpdatedAt.
func WithClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

// NewBoard starts empty. cache may be nil to disable the fallback.
func NewBoard(api SalesAPI, cache *snapshot.Cache, opts ...BoardOption) *Board {
	b := &Board{
		api:   api,
		cache: cache,
		now:   time.Now,
		state: State{Dashboard: core.NewDashboard()},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns a copy of the current state.
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.state
	st.Dashboard = st.Dashboard.Clone()
	return st
}

// Load fetches fresh views. On failure it falls back to a fresh snapshot and
// only enters the error state when there is none; the returned error is
// non-nil exactly in that case. Concurrent loads do not coordinate: the last
// one to finish sets the state.
func (b *Board) Load(ctx context.Context) (State, error) {
	dash, err := b.api.FetchSales(ctx)
	if err == nil {
		b.set(State{Dashboard: dash, Source: SourceLive, UpdatedAt: b.now()})
		if b.cache != nil {
			if cerr := b.cache.Save(ctx, dash); cerr != nil {
				slog.WarnContext(ctx, "Failed to save dashboard snapshot",
					log.FieldComponent, log.ComponentCache,
					log.FieldError, cerr)
			}
		}
		return b.State(), nil
	}

	slog.WarnContext(ctx, "Dashboard fetch failed",
		log.FieldComponent, log.ComponentDashboard,
		log.FieldOperation, log.OpQuery,
		log.FieldError, err)

	if b.cache != nil {
		snap, ok, cerr := b.cache.Fresh(ctx)
		if cerr != nil {
			slog.WarnContext(ctx, "Failed to read dashboard snapshot",
				log.FieldComponent, log.ComponentCache,
				log.FieldError, cerr)
		}
		if ok {
			b.set(State{
				Dashboard: snap.Dashboard(),
				Source:    SourceCache,
				UpdatedAt: time.UnixMilli(snap.Timestamp),
			})
			return b.State(), nil
		}
	}

	b.mu.Lock()
	b.state.Source = SourceNone
	b.state.Err = err
	b.mu.Unlock()
	return b.State(), err
}

// Retry is the manual retry action offered in the error state.
func (b *Board) Retry(ctx context.Context) (State, error) {
	return b.Load(ctx)
}

// Submit rejects incomplete drafts without calling the gateway. Otherwise it
// creates the sale and applies the optimistic update whatever the outcome.
func (b *Board) Submit(ctx context.Context, d core.SaleDraft) (SubmitResult, error) {
	if err := d.Validate(); err != nil {
		return SubmitResult{}, err
	}

	id, err := b.api.CreateSale(ctx, d)
	if err != nil {
		slog.ErrorContext(ctx, "Sale create failed; keeping local update",
			log.FieldComponent, log.ComponentDashboard,
			log.FieldOperation, log.OpCreate,
			log.FieldError, err)
	}

	sale := d.Sale(id)
	b.mu.Lock()
	b.state.Dashboard = b.state.Dashboard.WithSale(sale, b.aggOpts...)
	b.state.UpdatedAt = b.now()
	order := b.state.Dashboard.Orders[0]
	b.mu.Unlock()

	return SubmitResult{RecordID: id, Confirmed: err == nil, Order: order}, nil
}

func (b *Board) set(st State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = st
}

// Summary holds the headline figures shown above the charts.
type Summary struct {
	TotalRevenue      float64
	TotalOrders       int
	AverageOrderValue float64
	ProductCount      int
}

// Metrics derives the headline figures from the monthly and product views.
// Undated sales are absent from the monthly view and so from the totals.
func (b *Board) Metrics() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Summarize(b.state.Dashboard)
}

func Summarize(d core.Dashboard) Summary {
	var s Summary
	for _, m := range d.Monthly {
		s.TotalRevenue += m.Revenue
		s.TotalOrders += m.Orders
	}
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue / float64(s.TotalOrders)
	}
	s.ProductCount = len(d.Products)
	return s
}
