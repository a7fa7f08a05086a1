package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/records"
)

// Store keeps sales in process memory.
type Store struct {
	mu    sync.Mutex
	seq   int
	items []core.ExternalRecord
}

var _ records.Backend = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewFromFile seeds the store from a JSON array of sale drafts. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var drafts []core.SaleDraft
	if err := json.Unmarshal(b, &drafts); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for _, d := range drafts {
		s.add(d)
	}
	return s, nil
}

// CreateSale stores the draft and returns a synthetic record id.
func (s *Store) CreateSale(_ context.Context, d core.SaleDraft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	return s.add(d), nil
}

func (s *Store) add(d core.SaleDraft) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("mem:%d", s.seq)
	s.items = append(s.items, d.Record(id))
	return id
}

// QuerySales returns stored records, newest order date first.
func (s *Store) QuerySales(_ context.Context) ([]core.ExternalRecord, error) {
	s.mu.Lock()
	out := slices.Clone(s.items)
	s.mu.Unlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b core.ExternalRecord) int {
		return compareDateDesc(a.Fields.OrderDate, b.Fields.OrderDate)
	})
	return out, nil
}

func (s *Store) ReadSchema(_ context.Context) (core.DatabaseSchema, error) {
	return core.DatabaseSchema{
		ID:    "memory",
		Title: "In-memory sales",
		Properties: map[string]any{
			core.PropAmount:        map[string]any{"type": "number"},
			core.PropCustomerName:  map[string]any{"type": "title"},
			core.PropProductName:   map[string]any{"type": "rich_text"},
			core.PropOrderDate:     map[string]any{"type": "date"},
			core.PropPaymentMethod: map[string]any{"type": "select"},
		},
	}, nil
}

// Len reports how many sales are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func compareDateDesc(a, b *string) int {
	ta, okA := orderDate(a)
	tb, okB := orderDate(b)
	switch {
	case okA && okB:
		return tb.Compare(ta)
	case okA:
		return -1
	case okB:
		return 1
	}
	return 0
}

func orderDate(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	return core.ParseOrderDate(*s)
}
