package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/core"
	"salesdash/internal/records/memory"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
	m.ObserveExternal(OpQuery, nil)
	m.SaleCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/proxy/notion", 200, 20*time.Millisecond)
	m.ObserveHTTP("GET", "/proxy/notion", 200, 30*time.Millisecond)
	m.ObserveHTTP("POST", "/proxy/notion", 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/proxy/notion", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/proxy/notion", "400")))
}

func TestInstrumentBackend(t *testing.T) {
	m := New()
	b := InstrumentBackend(memory.New(), m)
	ctx := context.Background()

	_, err := b.CreateSale(ctx, core.SaleDraft{Amount: 1, CustomerName: "A", ProductName: "B", Date: "2025-01-01", PaymentMethod: "Cash"})
	require.NoError(t, err)
	_, err = b.CreateSale(ctx, core.SaleDraft{})
	require.Error(t, err)
	_, err = b.QuerySales(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.externalRequests.WithLabelValues(OpCreate, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.externalRequests.WithLabelValues(OpCreate, OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.externalRequests.WithLabelValues(OpQuery, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.salesCreated))

	m.ObserveExternal(OpSchema, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.externalRequests.WithLabelValues(OpSchema, OutcomeError)))
}

func TestInstrumentBackendWithoutMetrics(t *testing.T) {
	store := memory.New()
	assert.Same(t, store, InstrumentBackend(store, nil))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SaleCreated()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.True(t, strings.Contains(string(body), "salesdash_sales_created_total 1"))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
