package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/records"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Sales"

// Column layout, A through F.
var header = []string{
	core.PropOrderDate,
	core.PropCustomerName,
	core.PropProductName,
	core.PropAmount,
	core.PropPaymentMethod,
	"Record ID",
}

const (
	colDate = iota
	colCustomer
	colProduct
	colAmount
	colMethod
	colID
)

type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

// Ensure interface conformance
var _ records.Backend = (*Client)(nil)

// NewFromConfig creates a Sheets client authenticated with a service account.
func NewFromConfig(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Client{svc: svc, spreadsheetID: strings.TrimSpace(spreadsheetID), sheet: sheetName}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// CreateSale appends the draft under a freshly generated record id.
func (c *Client) CreateSale(ctx context.Context, d core.SaleDraft) (string, error) {
	id := uuid.NewString()
	if _, err := c.AppendSale(ctx, id, d); err != nil {
		return "", err
	}
	return id, nil
}

// AppendSale writes one row for a sale whose id was assigned elsewhere and
// returns the updated range.
func (c *Client) AppendSale(ctx context.Context, id string, d core.SaleDraft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", c.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{{d.Date, d.CustomerName, d.ProductName, d.Amount, d.PaymentMethod, id}}}

	// RAW keeps the ISO date as text so it reads back unchanged.
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, apiError(err))
	}
	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.DebugContext(ctx, "Sale row appended", log.FieldRecordID, id, "range", ref)
	return ref, nil
}

// QuerySales reads every data row and orders them newest first. Rows without a
// readable date go last, keeping sheet order.
func (c *Client) QuerySales(ctx context.Context) ([]core.ExternalRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:F", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, apiError(err))
	}

	out := make([]core.ExternalRecord, 0, len(resp.Values))
	for _, row := range resp.Values {
		if rec, ok := parseRow(row); ok {
			out = append(out, rec)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ReadSchema reports the spreadsheet title and the header row columns, read
// in one call.
func (c *Client) ReadSchema(ctx context.Context) (core.DatabaseSchema, error) {
	if c.svc == nil {
		return core.DatabaseSchema{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A1:F1", c.sheet)
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Ranges(rng).
		IncludeGridData(true).
		Fields("properties.title", "sheets.data.rowData.values.formattedValue").
		Context(ctx).Do()
	if err != nil {
		return core.DatabaseSchema{}, fmt.Errorf("read spreadsheet: %w", apiError(err))
	}

	names := header
	if row := headerRow(ss); len(row) > 0 {
		names = row
	}
	props := map[string]any{}
	for i, name := range names {
		if name == "" {
			continue
		}
		props[name] = map[string]any{"column": string(rune('A' + i))}
	}
	title := ""
	if ss.Properties != nil {
		title = ss.Properties.Title
	}
	return core.DatabaseSchema{ID: c.spreadsheetID, Title: title, Properties: props}, nil
}

func headerRow(ss *gsheet.Spreadsheet) []string {
	if len(ss.Sheets) == 0 || len(ss.Sheets[0].Data) == 0 || len(ss.Sheets[0].Data[0].RowData) == 0 {
		return nil
	}
	cells := ss.Sheets[0].Data[0].RowData[0].Values
	out := make([]string, len(cells))
	for i, cell := range cells {
		if cell != nil {
			out[i] = strings.TrimSpace(cell.FormattedValue)
		}
	}
	return out
}

// apiError maps Google API failures onto records.APIError so handlers can
// relay the upstream status. Transport errors pass through unchanged.
func apiError(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return err
	}
	apiErr := &records.APIError{StatusCode: gErr.Code, Message: gErr.Message}
	if len(gErr.Errors) > 0 {
		apiErr.Code = gErr.Errors[0].Reason
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(gErr.Code)
	}
	return apiErr
}

func parseRow(row []any) (core.ExternalRecord, bool) {
	cols := toStrings(row)
	blank := true
	for _, v := range cols {
		if v != "" {
			blank = false
			break
		}
	}
	if blank {
		return core.ExternalRecord{}, false
	}

	var f core.RecordFields
	f.OrderDate = optional(safeGet(cols, colDate))
	f.CustomerName = optional(safeGet(cols, colCustomer))
	f.ProductName = optional(safeGet(cols, colProduct))
	f.PaymentMethod = optional(safeGet(cols, colMethod))
	if colAmount < len(row) {
		f.Amount = parseAmountCell(row[colAmount])
	}
	return core.ExternalRecord{ID: safeGet(cols, colID), Fields: f}, true
}

func parseAmountCell(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func sortNewestFirst(recs []core.ExternalRecord) {
	key := func(r core.ExternalRecord) (int64, bool) {
		if r.Fields.OrderDate == nil {
			return 0, false
		}
		t, ok := core.ParseOrderDate(*r.Fields.OrderDate)
		if !ok {
			return 0, false
		}
		return t.Unix(), true
	}
	slices.SortStableFunc(recs, func(a, b core.ExternalRecord) int {
		ka, okA := key(a)
		kb, okB := key(b)
		switch {
		case okA && okB:
			return compareDesc(ka, kb)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
