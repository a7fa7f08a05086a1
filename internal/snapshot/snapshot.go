// Package snapshot keeps the last dashboard views the presentation layer
// saw, so a failed fetch can fall back to recent data.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesdash/internal/core"
)

const (
	// StorageKey is the fixed key snapshots are saved under.
	StorageKey = "salesDashboardData"

	// FreshnessWindow bounds how old a snapshot may be and still be served.
	FreshnessWindow = time.Hour
)

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the persisted form of the dashboard views. Timestamp is Unix
// milliseconds at save time.
type Snapshot struct {
	Monthly   []core.MonthlyBucket `json:"monthly"`
	Products  []core.ProductBucket `json:"products"`
	Orders    []core.OrderEntry    `json:"orders"`
	Timestamp int64                `json:"timestamp"`
}

// New captures d at the given instant.
func New(d core.Dashboard, at time.Time) Snapshot {
	d = d.Clone()
	return Snapshot{
		Monthly:   d.Monthly,
		Products:  d.Products,
		Orders:    d.Orders,
		Timestamp: at.UnixMilli(),
	}
}

// Dashboard returns a copy of the stored views.
func (s Snapshot) Dashboard() core.Dashboard {
	return core.Dashboard{Monthly: s.Monthly, Products: s.Products, Orders: s.Orders}.Clone()
}

func (s Snapshot) clone() Snapshot {
	d := s.Dashboard()
	s.Monthly, s.Products, s.Orders = d.Monthly, d.Products, d.Orders
	return s
}

// Fresh reports whether the snapshot is younger than FreshnessWindow.
func (s Snapshot) Fresh(now time.Time) bool {
	return now.UnixMilli()-s.Timestamp < FreshnessWindow.Milliseconds()
}

// Store persists snapshots by key. Load returns ErrNotFound for unknown keys.
type Store interface {
	Save(ctx context.Context, key string, s Snapshot) error
	Load(ctx context.Context, key string) (Snapshot, error)
}

// Cache applies the freshness window on top of a Store.
type Cache struct {
	store Store
	key   string
	now   func() time.Time
}

type CacheOption func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithKey stores snapshots under key instead of StorageKey.
func WithKey(key string) CacheOption {
	return func(c *Cache) { c.key = key }
}

func NewCache(store Store, opts ...CacheOption) *Cache {
	c := &Cache{store: store, key: StorageKey, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save stamps d with the current time and stores it.
func (c *Cache) Save(ctx context.Context, d core.Dashboard) error {
	if err := c.store.Save(ctx, c.key, New(d, c.now())); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Fresh returns the stored snapshot when it is within the freshness window.
// A missing or stale snapshot yields ok == false and no error.
func (c *Cache) Fresh(ctx context.Context) (Snapshot, bool, error) {
	s, err := c.store.Load(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	if !s.Fresh(c.now()) {
		return Snapshot{}, false, nil
	}
	return s, true, nil
}
