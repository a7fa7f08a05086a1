package core

import (
	"math"
	"strings"
	"time"
)

// Normalize extracts a NormalizedSale from one external record.
//
// Default table:
//
//	amount                                   absent, zero or NaN -> 0
//	customerName, productName, paymentMethod absent or blank     -> "Unknown"
//	date                                     absent, blank, bad  -> nil
//
// Normalize never fails.
func Normalize(r ExternalRecord) NormalizedSale {
	f := r.Fields
	sale := NormalizedSale{
		ID:            strings.TrimSpace(r.ID),
		Amount:        floatOr(f.Amount, 0),
		CustomerName:  textOr(f.CustomerName, Unknown),
		ProductName:   textOr(f.ProductName, Unknown),
		PaymentMethod: textOr(f.PaymentMethod, Unknown),
	}
	if f.OrderDate != nil {
		if d, ok := ParseOrderDate(*f.OrderDate); ok {
			sale.Date = &d
		}
	}
	return sale
}

// NormalizeAll normalizes records preserving their order.
func NormalizeAll(records []ExternalRecord) []NormalizedSale {
	out := make([]NormalizedSale, len(records))
	for i, r := range records {
		out[i] = Normalize(r)
	}
	return out
}

// ParseOrderDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
// and returns the calendar day at UTC midnight.
func ParseOrderDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func floatOr(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || *v == 0 {
		return def
	}
	return *v
}

func textOr(v *string, def string) string {
	if v == nil {
		return def
	}
	if s := strings.TrimSpace(*v); s != "" {
		return s
	}
	return def
}
