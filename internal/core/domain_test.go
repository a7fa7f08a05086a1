package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestSaleDraftMissingFields(t *testing.T) {
	full := SaleDraft{Amount: 10, CustomerName: "Ana", ProductName: "Widget", Date: "2025-01-05", PaymentMethod: "Cash"}
	assert.Empty(t, full.MissingFields())
	assert.NoError(t, full.Validate())

	cases := []struct {
		name  string
		draft SaleDraft
		want  []string
	}{
		{"empty", SaleDraft{}, []string{"amount", "customerName", "productName", "date", "paymentMethod"}},
		{"zero amount", SaleDraft{CustomerName: "Ana", ProductName: "Widget", Date: "2025-01-05", PaymentMethod: "Cash"}, []string{"amount"}},
		{"blank strings", SaleDraft{Amount: 1, CustomerName: "  ", ProductName: "Widget", Date: "", PaymentMethod: "Cash"}, []string{"customerName", "date"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.draft.MissingFields())

			err := tc.draft.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingFields))
			var mfe *MissingFieldsError
			require.True(t, errors.As(err, &mfe))
			assert.Equal(t, tc.want, mfe.Fields)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	got := Normalize(ExternalRecord{})
	assert.Equal(t, NormalizedSale{
		Amount:        0,
		CustomerName:  Unknown,
		ProductName:   Unknown,
		PaymentMethod: Unknown,
	}, got)
	assert.Nil(t, got.Date)

	blank := Normalize(ExternalRecord{ID: "p1", Fields: RecordFields{
		CustomerName: strPtr(" "),
		OrderDate:    strPtr("not a date"),
	}})
	assert.Equal(t, "p1", blank.ID)
	assert.Equal(t, Unknown, blank.CustomerName)
	assert.Nil(t, blank.Date)
}

func TestNormalizePresentFields(t *testing.T) {
	got := Normalize(ExternalRecord{ID: "abc", Fields: RecordFields{
		Amount:        floatPtr(99.5),
		CustomerName:  strPtr("Ana"),
		ProductName:   strPtr("Widget"),
		OrderDate:     strPtr("2025-03-09"),
		PaymentMethod: strPtr("GCash"),
	}})
	require.NotNil(t, got.Date)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), *got.Date)
	assert.Equal(t, 99.5, got.Amount)
	assert.Equal(t, "Ana", got.CustomerName)
	assert.Equal(t, "Widget", got.ProductName)
	assert.Equal(t, "GCash", got.PaymentMethod)
}

func TestParseOrderDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-01-05", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-31T23:30:00+08:00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"2025-01-31T23:30:00.000Z", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"31/01/2025", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseOrderDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q expected ok=%v", tc.in, tc.ok)
		}
		if ok && !got.Equal(tc.want) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestSaleDraftSale(t *testing.T) {
	d := SaleDraft{Amount: 120, CustomerName: "Ben", ProductName: "Gadget", Date: "2025-02-14", PaymentMethod: "Cash"}
	s := d.Sale("page-1")
	assert.Equal(t, "page-1", s.ID)
	assert.Equal(t, 120.0, s.Amount)
	require.NotNil(t, s.Date)
	assert.Equal(t, "Feb 2025", MonthLabel(*s.Date))
}
