package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/records"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	// queryPageSize is the largest page the API serves; only one page is read.
	queryPageSize = 100
)

// Config configures the hosted database client.
type Config struct {
	APIKey     string
	DatabaseID string // dashed UUID form
	// BaseURL overrides the API origin. A trailing /v1 is accepted.
	BaseURL string
	Version string
	// Timeout bounds each request; zero leaves the HTTP client default.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the hosted database through notionapi.
type Client struct {
	api        *notionapi.Client
	databaseID notionapi.DatabaseID
}

// Ensure interface conformance
var _ records.Backend = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing api key")
	}
	if strings.TrimSpace(cfg.DatabaseID) == "" {
		return nil, errors.New("missing database id")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base != "" && base != DefaultBaseURL {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid base url %q", base)
		}
		hc = withOrigin(hc, u)
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = DefaultVersion
	}
	api := notionapi.NewClient(notionapi.Token(cfg.APIKey),
		notionapi.WithHTTPClient(hc),
		notionapi.WithVersion(version),
		// One attempt only: a 429 is reported, never retried.
		notionapi.WithRetry(1),
	)
	return &Client{api: api, databaseID: notionapi.DatabaseID(cfg.DatabaseID)}, nil
}

// DatabaseID returns the database the client is bound to.
func (c *Client) DatabaseID() string { return c.databaseID.String() }

// CreateSale creates one page in the sales database.
func (c *Client) CreateSale(ctx context.Context, d core.SaleDraft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	props, err := saleProperties(d)
	if err != nil {
		return "", err
	}
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("create page: %w", apiError(err))
	}
	slog.DebugContext(ctx, "Page created",
		log.FieldRecordID, page.ID.String(), "database_id", c.DatabaseID())
	return page.ID.String(), nil
}

// QuerySales reads one page of results sorted by order date, newest first.
func (c *Client) QuerySales(ctx context.Context) ([]core.ExternalRecord, error) {
	resp, err := c.api.Database.Query(ctx, c.databaseID, &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{{
			Property:  core.PropOrderDate,
			Direction: notionapi.SortOrderDESC,
		}},
		PageSize: queryPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("query database: %w", apiError(err))
	}
	if resp.HasMore {
		slog.WarnContext(ctx, "Query truncated to first page",
			"page_size", queryPageSize, "database_id", c.DatabaseID())
	}
	out := make([]core.ExternalRecord, 0, len(resp.Results))
	for _, p := range resp.Results {
		out = append(out, pageRecord(p))
	}
	return out, nil
}

// ReadSchema fetches the database title and property schema.
func (c *Client) ReadSchema(ctx context.Context) (core.DatabaseSchema, error) {
	db, err := c.api.Database.Get(ctx, c.databaseID)
	if err != nil {
		return core.DatabaseSchema{}, fmt.Errorf("retrieve database: %w", apiError(err))
	}
	props := make(map[string]any, len(db.Properties))
	for name, cfg := range db.Properties {
		props[name] = cfg
	}
	return core.DatabaseSchema{ID: db.ID.String(), Title: plainText(db.Title), Properties: props}, nil
}

// apiError maps notionapi failures onto records.APIError so handlers can
// relay the upstream status. Transport errors pass through unchanged.
func apiError(err error) error {
	var nErr *notionapi.Error
	if errors.As(err, &nErr) {
		msg := nErr.Message
		if msg == "" {
			msg = http.StatusText(nErr.Status)
		}
		return &records.APIError{StatusCode: nErr.Status, Code: string(nErr.Code), Message: msg}
	}
	var rlErr *notionapi.RateLimitedError
	if errors.As(err, &rlErr) {
		return &records.APIError{StatusCode: http.StatusTooManyRequests, Code: "rate_limited", Message: rlErr.Message}
	}
	return err
}

// originTransport sends every request to another scheme and host, keeping
// the /v1 paths notionapi builds.
type originTransport struct {
	next   http.RoundTripper
	scheme string
	host   string
	prefix string
}

func withOrigin(hc *http.Client, u *url.URL) *http.Client {
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	clone := *hc
	clone.Transport = &originTransport{
		next:   next,
		scheme: u.Scheme,
		host:   u.Host,
		prefix: strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/v1"),
	}
	return &clone
}

func (t *originTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.scheme
	out.URL.Host = t.host
	out.URL.Path = t.prefix + out.URL.Path
	out.Host = ""
	return t.next.RoundTrip(out)
}
