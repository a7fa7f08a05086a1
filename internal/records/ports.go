package records

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"salesdash/internal/core"
)

// Ports for the external sales database.
type (
	SaleWriter interface {
		// CreateSale stores a new sale and returns the external record id.
		CreateSale(ctx context.Context, d core.SaleDraft) (id string, err error)
	}

	// SaleQuerier returns records sorted descending by order date.
	SaleQuerier interface {
		QuerySales(ctx context.Context) ([]core.ExternalRecord, error)
	}

	SchemaReader interface {
		ReadSchema(ctx context.Context) (core.DatabaseSchema, error)
	}

	// Backend is the full surface the gateway needs from a records store.
	Backend interface {
		SaleWriter
		SaleQuerier
		SchemaReader
	}
)

// APIError is an error reported by the external database service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("external api %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("external api %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the external status carried by err, or 500.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 600 {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the external service message carried by err, or err's text.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
