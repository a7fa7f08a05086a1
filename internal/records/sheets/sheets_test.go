package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"salesdash/internal/core"
	"salesdash/internal/records"
)

func newFakeClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return New(svc, "sheet-id", "")
}

func TestParseRow(t *testing.T) {
	rec, ok := parseRow([]any{"2025-01-05", "Ana", "Widget", 120.5, "Cash", "id-1"})
	require.True(t, ok)
	assert.Equal(t, "id-1", rec.ID)
	require.NotNil(t, rec.Fields.Amount)
	assert.Equal(t, 120.5, *rec.Fields.Amount)
	assert.Equal(t, "Ana", *rec.Fields.CustomerName)

	rec, ok = parseRow([]any{"", "Ben", "", "1,250.75"})
	require.True(t, ok)
	assert.Equal(t, "", rec.ID)
	assert.Nil(t, rec.Fields.OrderDate)
	assert.Nil(t, rec.Fields.ProductName)
	assert.Nil(t, rec.Fields.PaymentMethod)
	require.NotNil(t, rec.Fields.Amount)
	assert.Equal(t, 1250.75, *rec.Fields.Amount)

	_, ok = parseRow([]any{"", " ", ""})
	assert.False(t, ok)
}

func TestSortNewestFirst(t *testing.T) {
	d := func(s string) *string { return &s }
	recs := []core.ExternalRecord{
		{ID: "a", Fields: core.RecordFields{OrderDate: d("2025-01-05")}},
		{ID: "b"},
		{ID: "c", Fields: core.RecordFields{OrderDate: d("2025-03-01")}},
		{ID: "d", Fields: core.RecordFields{OrderDate: d("garbage")}},
		{ID: "e", Fields: core.RecordFields{OrderDate: d("2025-01-05")}},
	}
	sortNewestFirst(recs)

	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"c", "a", "e", "b", "d"}, ids)
}

func TestAppendSale(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))

		var vr gsheet.ValueRange
		require.NoError(t, json.NewDecoder(r.Body).Decode(&vr))
		require.Len(t, vr.Values, 1)
		assert.Equal(t, []any{"2025-01-05", "Ana", "Widget", 99.0, "Cash", "page-1"}, vr.Values[0])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-id",
			"updates":       map[string]any{"updatedRange": "Sales!A7:F7"},
		})
	})

	ref, err := c.AppendSale(context.Background(), "page-1", core.SaleDraft{
		Amount: 99, CustomerName: "Ana", ProductName: "Widget", Date: "2025-01-05", PaymentMethod: "Cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sales!A7:F7", ref)
}

func TestAppendSaleValidates(t *testing.T) {
	c := New(nil, "sheet-id", "")
	_, err := c.AppendSale(context.Background(), "x", core.SaleDraft{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMissingFields))
}

func TestQuerySales(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "A2:F"), r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range": "Sales!A2:F4",
			"values": [][]any{
				{"2025-01-05", "Ana", "Widget", 100, "Cash", "r1"},
				{},
				{"2025-02-01", "Ben", "Gadget", 75, "GCash", "r2"},
			},
		})
	})

	recs, err := c.QuerySales(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "r2", recs[0].ID)
	assert.Equal(t, "r1", recs[1].ID)
}

func TestReadSchemaSingleCall(t *testing.T) {
	calls := 0
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/spreadsheets/sheet-id"), r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeGridData"))
		assert.Equal(t, "Sales!A1:F1", r.URL.Query().Get("ranges"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"properties": map[string]any{"title": "Shop ledger"},
			"sheets": []any{map[string]any{
				"data": []any{map[string]any{
					"rowData": []any{map[string]any{
						"values": []any{
							map[string]any{"formattedValue": "Order Date"},
							map[string]any{"formattedValue": "Customer Name"},
							map[string]any{},
							map[string]any{"formattedValue": "Amount"},
						},
					}},
				}},
			}},
		})
	})

	schema, err := c.ReadSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "sheet-id", schema.ID)
	assert.Equal(t, "Shop ledger", schema.Title)
	assert.Equal(t, map[string]any{
		"Order Date":    map[string]any{"column": "A"},
		"Customer Name": map[string]any{"column": "B"},
		"Amount":        map[string]any{"column": "D"},
	}, schema.Properties)
}

func TestGoogleErrorsKeepStatus(t *testing.T) {
	c := newFakeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
	})

	_, err := c.ReadSchema(context.Background())
	assert.Equal(t, http.StatusForbidden, records.StatusCode(err))
	assert.Equal(t, "The caller does not have permission", records.Message(err))

	_, err = c.CreateSale(context.Background(), core.SaleDraft{
		Amount: 1, CustomerName: "A", ProductName: "B", Date: "2025-01-01", PaymentMethod: "Cash",
	})
	assert.Equal(t, http.StatusForbidden, records.StatusCode(err))

	_, err = c.QuerySales(context.Background())
	assert.Equal(t, http.StatusForbidden, records.StatusCode(err))
}

func TestNilServiceErrors(t *testing.T) {
	c := New(nil, "id", "")
	_, err := c.QuerySales(context.Background())
	assert.Error(t, err)
	_, err = c.ReadSchema(context.Background())
	assert.Error(t, err)
}

func TestNewFromConfigMissingSpreadsheet(t *testing.T) {
	_, err := NewFromConfig(context.Background(), Config{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}
