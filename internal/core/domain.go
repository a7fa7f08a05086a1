package core

import (
	"errors"
	"strings"
	"time"
)

// Property labels used by the external sales database.
const (
	PropAmount        = "Amount"
	PropCustomerName  = "Customer Name"
	PropProductName   = "Product Name"
	PropOrderDate     = "Order Date"
	PropPaymentMethod = "Payment Method"
)

// Unknown replaces absent text properties during normalization.
const Unknown = "Unknown"

// PaymentMethods lists the labels offered by the sales form.
var PaymentMethods = []string{"Cash", "Credit Card", "Debit Card", "GCash", "Bank Transfer"}

type (
	// RecordFields holds the optional scalar properties of one external record.
	// A nil pointer means the property was absent from the source.
	RecordFields struct {
		Amount        *float64
		CustomerName  *string
		ProductName   *string
		OrderDate     *string
		PaymentMethod *string
	}

	// ExternalRecord is a read-only row owned by the external database.
	ExternalRecord struct {
		ID     string
		Fields RecordFields
	}

	// NormalizedSale is the canonical five-field shape derived from one record,
	// plus the source identifier used for order ids.
	NormalizedSale struct {
		ID            string
		Amount        float64
		CustomerName  string
		ProductName   string
		Date          *time.Time
		PaymentMethod string
	}

	// SaleDraft is a new sale as submitted by the dashboard form.
	SaleDraft struct {
		Amount        float64 `json:"amount"`
		CustomerName  string  `json:"customerName"`
		ProductName   string  `json:"productName"`
		Date          string  `json:"date"`
		PaymentMethod string  `json:"paymentMethod"`
	}

	// DatabaseSchema is the introspection result for the sales database.
	DatabaseSchema struct {
		ID         string         `json:"id"`
		Title      string         `json:"title"`
		Properties map[string]any `json:"properties"`
	}
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidAmount = errors.New("invalid amount")
)

// MissingFieldsError lists the draft fields that were absent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return ErrMissingFields.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}

// MissingFields returns the JSON names of absent fields in form order.
// A zero amount counts as absent.
func (d SaleDraft) MissingFields() []string {
	var missing []string
	if d.Amount == 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(d.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(d.ProductName) == "" {
		missing = append(missing, "productName")
	}
	if strings.TrimSpace(d.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(d.PaymentMethod) == "" {
		missing = append(missing, "paymentMethod")
	}
	return missing
}

func (d SaleDraft) Validate() error {
	if missing := d.MissingFields(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// Record exposes the draft as an external record with the given id.
func (d SaleDraft) Record(id string) ExternalRecord {
	amount := d.Amount
	customer, product := d.CustomerName, d.ProductName
	date, method := d.Date, d.PaymentMethod
	return ExternalRecord{
		ID: id,
		Fields: RecordFields{
			Amount:        &amount,
			CustomerName:  &customer,
			ProductName:   &product,
			OrderDate:     &date,
			PaymentMethod: &method,
		},
	}
}

// Sale normalizes the draft with the same default table applied to fetched records.
func (d SaleDraft) Sale(id string) NormalizedSale {
	return Normalize(d.Record(id))
}
