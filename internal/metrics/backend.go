package metrics

import (
	"context"

	"salesdash/internal/core"
	"salesdash/internal/records"
)

// Operation labels.
const (
	OpCreate = "create"
	OpQuery  = "query"
	OpSchema = "schema"
)

type instrumentedBackend struct {
	next records.Backend
	m    *Metrics
}

// InstrumentBackend counts every call made through b.
func InstrumentBackend(b records.Backend, m *Metrics) records.Backend {
	if m == nil {
		return b
	}
	return &instrumentedBackend{next: b, m: m}
}

func (b *instrumentedBackend) CreateSale(ctx context.Context, d core.SaleDraft) (string, error) {
	id, err := b.next.CreateSale(ctx, d)
	b.m.ObserveExternal(OpCreate, err)
	if err == nil {
		b.m.SaleCreated()
	}
	return id, err
}

func (b *instrumentedBackend) QuerySales(ctx context.Context) ([]core.ExternalRecord, error) {
	recs, err := b.next.QuerySales(ctx)
	b.m.ObserveExternal(OpQuery, err)
	return recs, err
}

func (b *instrumentedBackend) ReadSchema(ctx context.Context) (core.DatabaseSchema, error) {
	s, err := b.next.ReadSchema(ctx)
	b.m.ObserveExternal(OpSchema, err)
	return s, err
}
