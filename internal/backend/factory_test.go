package backend

import (
	"context"
	"testing"

	"salesdash/internal/config"
	"salesdash/internal/records/memory"
	"salesdash/internal/records/notion"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	app := &config.Config{
		DataBackend:      "notion",
		NotionAPIKey:     "k",
		NotionDatabaseID: "1a2b3c4d5e6f47a8b9c0d1e2f3a4b5c6",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != NotionBackend {
		t.Errorf("Type = %v, want notion", cfg.Type)
	}
	if cfg.NotionDatabaseID != "1a2b3c4d-5e6f-47a8-b9c0-d1e2f3a4b5c6" {
		t.Errorf("NotionDatabaseID = %q, want dashed form", cfg.NotionDatabaseID)
	}

	app.DataBackend = "postgres"
	if _, err := FromAppConfig(app); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg Config
		ok  bool
	}{
		{Config{Type: MemoryBackend}, true},
		{Config{Type: NotionBackend, NotionAPIKey: "k", NotionDatabaseID: "d"}, true},
		{Config{Type: NotionBackend, NotionDatabaseID: "d"}, false},
		{Config{Type: NotionBackend, NotionAPIKey: "k"}, false},
		{Config{Type: SheetsBackend}, false},
		{Config{Type: "bogus"}, false},
	}
	for i, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := res.Backend.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", res.Backend)
	}

	res, err = f.CreateBackend(ctx, Config{Type: NotionBackend, NotionAPIKey: "k", NotionDatabaseID: "d"})
	if err != nil {
		t.Fatalf("notion: %v", err)
	}
	if _, ok := res.Backend.(*notion.Client); !ok {
		t.Fatalf("expected notion client, got %T", res.Backend)
	}
	if res.Cleanup != nil {
		t.Fatalf("notion backend needs no cleanup")
	}

	if _, err := f.CreateBackend(ctx, Config{Type: SheetsBackend}); err == nil {
		t.Fatal("expected sheets error without spreadsheet id")
	}
}
