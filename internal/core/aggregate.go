package core

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	// MaxOrders caps the recent-orders feed.
	MaxOrders = 10

	OrderStatusCompleted = "completed"

	monthLabelLayout = "Jan 2006"
	shortDateLayout  = "1/2/2006"
)

// Option customizes an aggregation run.
type Option func(*aggregator)

type aggregator struct {
	color func() string
}

// WithColors replaces the random product color generator.
func WithColors(fn func() string) Option {
	return func(a *aggregator) {
		if fn != nil {
			a.color = fn
		}
	}
}

func newAggregator(opts []Option) *aggregator {
	a := &aggregator{color: RandomColor}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate builds the monthly, product and recent-orders views from sales
// given in feed order (newest first). Buckets keep first-seen order.
func Aggregate(sales []NormalizedSale, opts ...Option) Dashboard {
	a := newAggregator(opts)
	d := NewDashboard()
	for i, s := range sales {
		d.rollup(s, a.color)
		if len(d.Orders) < MaxOrders {
			d.Orders = append(d.Orders, NewOrderEntry(s, i+1))
		}
	}
	return d
}

// WithSale applies one new sale the way Aggregate would, prepending its order
// entry and trimming the feed. The receiver is left untouched.
func (d Dashboard) WithSale(s NormalizedSale, opts ...Option) Dashboard {
	a := newAggregator(opts)
	next := d.Clone()
	next.rollup(s, a.color)
	next.Orders = append([]OrderEntry{NewOrderEntry(s, 1)}, next.Orders...)
	if len(next.Orders) > MaxOrders {
		next.Orders = next.Orders[:MaxOrders]
	}
	return next
}

// rollup is the single update rule for monthly and product buckets.
// Undated sales skip the monthly view.
func (d *Dashboard) rollup(s NormalizedSale, color func() string) {
	if s.Date != nil {
		label := MonthLabel(*s.Date)
		if i := d.monthIndex(label); i >= 0 {
			d.Monthly[i].Revenue += s.Amount
			d.Monthly[i].Orders++
			d.Monthly[i].Customers++
		} else {
			d.Monthly = append(d.Monthly, MonthlyBucket{Name: label, Revenue: s.Amount, Orders: 1, Customers: 1})
		}
	}

	if i := d.productIndex(s.ProductName); i >= 0 {
		d.Products[i].Value += s.Amount
	} else {
		d.Products = append(d.Products, ProductBucket{Name: s.ProductName, Value: s.Amount, Color: color()})
	}
}

func (d *Dashboard) monthIndex(name string) int {
	for i := range d.Monthly {
		if d.Monthly[i].Name == name {
			return i
		}
	}
	return -1
}

func (d *Dashboard) productIndex(name string) int {
	for i := range d.Products {
		if d.Products[i].Name == name {
			return i
		}
	}
	return -1
}

// NewOrderEntry formats a sale for the orders feed. position is the sale's
// 1-based index in the full input and only matters when the sale has no id.
func NewOrderEntry(s NormalizedSale, position int) OrderEntry {
	return OrderEntry{
		ID:            OrderID(s.ID, position),
		Customer:      s.CustomerName,
		Product:       s.ProductName,
		Date:          FormatShortDate(s.Date),
		PaymentMethod: s.PaymentMethod,
		Amount:        FormatPHP(s.Amount),
		Status:        OrderStatusCompleted,
	}
}

// OrderID returns id, or a zero-padded sequence number like "#0007".
func OrderID(id string, position int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("#%04d", position)
}

// MonthLabel renders the bucket key for a date, e.g. "Jan 2025".
func MonthLabel(t time.Time) string {
	return t.Format(monthLabelLayout)
}

// FormatShortDate renders a date as M/D/YYYY, or "-" when absent.
func FormatShortDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(shortDateLayout)
}

// RandomColor returns a random #rrggbb color.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}
