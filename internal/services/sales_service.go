package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"salesdash/internal/amqp"
	"salesdash/internal/core"
	"salesdash/internal/records"
)

// EventPublisher announces sales accepted by the external database.
type EventPublisher interface {
	PublishSaleCreated(ctx context.Context, ev *amqp.SaleCreatedEvent) error
}

// SalesService runs the gateway use cases: each call makes exactly one
// request to the records backend.
type SalesService struct {
	backend     records.Backend
	publisher   EventPublisher
	backendName string
	aggOpts     []core.Option
}

type Option func(*SalesService)

// WithPublisher enables sale-created events. A nil publisher is ignored.
func WithPublisher(p EventPublisher) Option {
	return func(s *SalesService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithBackendName labels published events with the backend type.
func WithBackendName(name string) Option {
	return func(s *SalesService) { s.backendName = name }
}

// WithAggregateOptions forwards options to every aggregation run.
func WithAggregateOptions(opts ...core.Option) Option {
	return func(s *SalesService) { s.aggOpts = append(s.aggOpts, opts...) }
}

func NewSalesService(backend records.Backend, opts ...Option) *SalesService {
	s := &SalesService{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale validates the draft, stores it and publishes an event. Drafts with
// missing fields never reach the backend. Publish failures are only logged.
func (s *SalesService) CreateSale(ctx context.Context, d core.SaleDraft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	if d.Amount < 0 {
		return "", core.ErrInvalidAmount
	}

	id, err := s.backend.CreateSale(ctx, d)
	if err != nil {
		return "", fmt.Errorf("create sale: %w", err)
	}

	if err := s.publish(ctx, id, d); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sale created event",
			"record_id", id, "error", err)
	}
	return id, nil
}

func (s *SalesService) publish(ctx context.Context, id string, d core.SaleDraft) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishSaleCreated(ctx, amqp.NewSaleCreatedEvent(id, s.backendName, d))
}

// FetchDashboard queries all sales and aggregates them.
func (s *SalesService) FetchDashboard(ctx context.Context) (core.Dashboard, error) {
	recs, err := s.backend.QuerySales(ctx)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("query sales: %w", err)
	}
	return core.Aggregate(core.NormalizeAll(recs), s.aggOpts...), nil
}

// TestDatabase reads the database schema.
func (s *SalesService) TestDatabase(ctx context.Context) (core.DatabaseSchema, error) {
	schema, err := s.backend.ReadSchema(ctx)
	if err != nil {
		return core.DatabaseSchema{}, fmt.Errorf("read schema: %w", err)
	}
	return schema, nil
}

// Close releases the publisher when it holds resources.
func (s *SalesService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
