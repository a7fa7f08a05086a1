package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/core"
)

func TestClientFetchSales(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/proxy/notion", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"monthly":[{"name":"Jan 2025","revenue":150,"orders":2,"customers":2}],"products":[],"orders":null}`))
	}))
	defer srv.Close()

	d, err := NewClient(srv.URL+"/", srv.Client()).FetchSales(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Monthly, 1)
	assert.Equal(t, 150.0, d.Monthly[0].Revenue)
	assert.NotNil(t, d.Orders)
}

func TestClientFetchSalesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to fetch sales data","error":"boom"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).FetchSales(context.Background())
	var gw *GatewayError
	require.True(t, errors.As(err, &gw))
	assert.Equal(t, http.StatusInternalServerError, gw.StatusCode)
	assert.Equal(t, "Failed to fetch sales data", gw.Message)
	assert.Equal(t, "boom", gw.Detail)
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>upstream</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).FetchSales(context.Background())
	var gw *GatewayError
	require.True(t, errors.As(err, &gw))
	assert.Equal(t, http.StatusBadGateway, gw.StatusCode)
}

func TestClientCreateSale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var d core.SaleDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		if d.ProductName == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"error","message":"Missing required fields","missingFields":["productName"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","message":"Sale added successfully","pageId":"page-9"}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, srv.Client())

	id, err := c.CreateSale(context.Background(), core.SaleDraft{Amount: 1, CustomerName: "A", ProductName: "B", Date: "2025-01-01", PaymentMethod: "Cash"})
	require.NoError(t, err)
	assert.Equal(t, "page-9", id)

	_, err = c.CreateSale(context.Background(), core.SaleDraft{Amount: 1})
	require.Error(t, err)
	assert.True(t, IsMissingFields(err))
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).FetchSales(context.Background())
	require.Error(t, err)
	assert.False(t, IsMissingFields(err))
}
