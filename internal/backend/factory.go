package backend

import (
	"context"
	"fmt"
	"log/slog"

	"salesdash/internal/records/memory"
	"salesdash/internal/records/notion"
	"salesdash/internal/records/sheets"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case NotionBackend:
		return f.createNotionBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createNotionBackend(config Config) (*BackendResult, error) {
	cli, err := notion.New(notion.Config{
		APIKey:     config.NotionAPIKey,
		DatabaseID: config.NotionDatabaseID,
		BaseURL:    config.NotionAPIURL,
		Version:    config.NotionVersion,
		Timeout:    config.NotionTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hosted database client: %w", err)
	}

	f.logger.Info("Initialized notion backend",
		"database_id", config.NotionDatabaseID,
		"timeout", config.NotionTimeout)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := sheets.NewFromConfig(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile, "sales", store.Len())

	return &BackendResult{Backend: store}, nil
}
