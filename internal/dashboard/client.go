package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"salesdash/internal/core"
)

// GatewayError is a non-success answer from the proxy gateway.
type GatewayError struct {
	StatusCode    int
	Message       string
	Detail        string
	MissingFields []string
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("gateway %d: %s", e.StatusCode, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Client talks to the proxy gateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient gets a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type fetchResponse struct {
	Success  bool                 `json:"success"`
	Monthly  []core.MonthlyBucket `json:"monthly"`
	Products []core.ProductBucket `json:"products"`
	Orders   []core.OrderEntry    `json:"orders"`
	Message  string               `json:"message"`
	Error    string               `json:"error"`
}

type createResponse struct {
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	PageID        string   `json:"pageId"`
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields"`
}

// FetchSales loads the three dashboard views.
func (c *Client) FetchSales(ctx context.Context) (core.Dashboard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/proxy/notion", nil)
	if err != nil {
		return core.Dashboard{}, err
	}
	req.Header.Set("Accept", "application/json")

	var out fetchResponse
	status, err := c.do(req, &out)
	if err != nil {
		return core.Dashboard{}, err
	}
	if status != http.StatusOK || !out.Success {
		return core.Dashboard{}, &GatewayError{StatusCode: status, Message: out.Message, Detail: out.Error}
	}

	d := core.Dashboard{Monthly: out.Monthly, Products: out.Products, Orders: out.Orders}
	if d.Monthly == nil {
		d.Monthly = []core.MonthlyBucket{}
	}
	if d.Products == nil {
		d.Products = []core.ProductBucket{}
	}
	if d.Orders == nil {
		d.Orders = []core.OrderEntry{}
	}
	return d, nil
}

// CreateSale submits a draft and returns the new record id.
func (c *Client) CreateSale(ctx context.Context, d core.SaleDraft) (string, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode sale: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/proxy/notion", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var out createResponse
	status, err := c.do(req, &out)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || out.Status != "success" {
		return "", &GatewayError{StatusCode: status, Message: out.Message, Detail: out.Error, MissingFields: out.MissingFields}
	}
	return out.PageID, nil
}

func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, &GatewayError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// IsMissingFields reports whether err is a gateway rejection for absent fields.
func IsMissingFields(err error) bool {
	var gw *GatewayError
	return errors.As(err, &gw) && len(gw.MissingFields) > 0
}
