package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/amqp"
	"salesdash/internal/core"
	"salesdash/internal/records"
	"salesdash/internal/records/memory"
)

type fakePublisher struct {
	events []*amqp.SaleCreatedEvent
	err    error
	closed bool
}

func (p *fakePublisher) PublishSaleCreated(_ context.Context, ev *amqp.SaleCreatedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

// countingBackend records calls and can fail on demand.
type countingBackend struct {
	records.Backend
	creates, queries int
	err              error
}

func (b *countingBackend) CreateSale(ctx context.Context, d core.SaleDraft) (string, error) {
	b.creates++
	if b.err != nil {
		return "", b.err
	}
	return b.Backend.CreateSale(ctx, d)
}

func (b *countingBackend) QuerySales(ctx context.Context) ([]core.ExternalRecord, error) {
	b.queries++
	if b.err != nil {
		return nil, b.err
	}
	return b.Backend.QuerySales(ctx)
}

func validDraft() core.SaleDraft {
	return core.SaleDraft{Amount: 100, CustomerName: "Ana", ProductName: "Widget", Date: "2025-01-05", PaymentMethod: "Cash"}
}

func TestCreateSalePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewSalesService(memory.New(), WithPublisher(pub), WithBackendName("memory"))

	id, err := svc.CreateSale(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "mem:1", id)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "mem:1", pub.events[0].RecordID)
	assert.Equal(t, "memory", pub.events[0].Backend)
	assert.Equal(t, validDraft(), pub.events[0].Sale)
}

func TestCreateSaleMissingFieldsSkipsBackend(t *testing.T) {
	b := &countingBackend{Backend: memory.New()}
	pub := &fakePublisher{}
	svc := NewSalesService(b, WithPublisher(pub))

	_, err := svc.CreateSale(context.Background(), core.SaleDraft{CustomerName: "Ana"})
	var mfe *core.MissingFieldsError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, []string{"amount", "productName", "date", "paymentMethod"}, mfe.Fields)
	assert.Zero(t, b.creates)
	assert.Empty(t, pub.events)
}

func TestCreateSaleRejectsNegativeAmount(t *testing.T) {
	b := &countingBackend{Backend: memory.New()}
	d := validDraft()
	d.Amount = -5

	_, err := NewSalesService(b).CreateSale(context.Background(), d)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Zero(t, b.creates)
}

func TestCreateSaleBackendErrorKeepsStatus(t *testing.T) {
	b := &countingBackend{Backend: memory.New(), err: &records.APIError{StatusCode: 401, Message: "API token is invalid."}}
	pub := &fakePublisher{}
	svc := NewSalesService(b, WithPublisher(pub))

	_, err := svc.CreateSale(context.Background(), validDraft())
	require.Error(t, err)
	assert.Equal(t, 401, records.StatusCode(err))
	assert.Equal(t, 1, b.creates)
	assert.Empty(t, pub.events)
}

func TestCreateSalePublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewSalesService(memory.New(), WithPublisher(pub))

	id, err := svc.CreateSale(context.Background(), validDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, pub.events, 1)
}

func TestFetchDashboard(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for _, d := range []core.SaleDraft{
		{Amount: 100, CustomerName: "A", ProductName: "Widget", Date: "2025-01-05", PaymentMethod: "Cash"},
		{Amount: 50, CustomerName: "B", ProductName: "Widget", Date: "2025-01-20", PaymentMethod: "Cash"},
		{Amount: 75, CustomerName: "C", ProductName: "Gadget", Date: "2025-02-01", PaymentMethod: "GCash"},
	} {
		_, err := store.CreateSale(ctx, d)
		require.NoError(t, err)
	}
	b := &countingBackend{Backend: store}
	svc := NewSalesService(b, WithAggregateOptions(core.WithColors(func() string { return "#123456" })))

	dash, err := svc.FetchDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.queries)

	// newest first: Feb, then the two January sales
	assert.Equal(t, []core.MonthlyBucket{
		{Name: "Feb 2025", Revenue: 75, Orders: 1, Customers: 1},
		{Name: "Jan 2025", Revenue: 150, Orders: 2, Customers: 2},
	}, dash.Monthly)
	assert.Equal(t, []core.ProductBucket{
		{Name: "Gadget", Value: 75, Color: "#123456"},
		{Name: "Widget", Value: 150, Color: "#123456"},
	}, dash.Products)
	require.Len(t, dash.Orders, 3)
	assert.Equal(t, "mem:3", dash.Orders[0].ID)
}

func TestFetchDashboardError(t *testing.T) {
	b := &countingBackend{Backend: memory.New(), err: errors.New("dial tcp: refused")}
	_, err := NewSalesService(b).FetchDashboard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query sales")
}

func TestTestDatabase(t *testing.T) {
	schema, err := NewSalesService(memory.New()).TestDatabase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "memory", schema.ID)
}

func TestClose(t *testing.T) {
	assert.NoError(t, NewSalesService(memory.New()).Close())

	pub := &fakePublisher{}
	require.NoError(t, NewSalesService(memory.New(), WithPublisher(pub)).Close())
	assert.True(t, pub.closed)
}
