package backend

import (
	"context"
	"time"

	"salesdash/internal/records"
)

// Backend is the records store the gateway forwards to.
type Backend = records.Backend

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Hosted database
	NotionAPIKey     string
	NotionDatabaseID string
	NotionAPIURL     string
	NotionVersion    string
	NotionTimeout    time.Duration

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	NotionBackend BackendType = "notion"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case NotionBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
