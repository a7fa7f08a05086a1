package notion

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"salesdash/internal/core"
	"salesdash/internal/records"
)

func saleProperties(d core.SaleDraft) (notionapi.Properties, error) {
	var date notionapi.Date
	if err := date.UnmarshalText([]byte(d.Date)); err != nil {
		return nil, &records.APIError{
			StatusCode: http.StatusBadRequest,
			Code:       "validation_error",
			Message:    fmt.Sprintf("%s is not a valid date: %q", core.PropOrderDate, d.Date),
		}
	}
	return notionapi.Properties{
		core.PropAmount:        notionapi.NumberProperty{Number: d.Amount},
		core.PropCustomerName:  notionapi.TitleProperty{Title: textValue(d.CustomerName)},
		core.PropProductName:   notionapi.RichTextProperty{RichText: textValue(d.ProductName)},
		core.PropOrderDate:     notionapi.DateProperty{Date: &notionapi.DateObject{Start: &date}},
		core.PropPaymentMethod: notionapi.SelectProperty{Select: notionapi.Option{Name: d.PaymentMethod}},
	}, nil
}

func textValue(s string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: s}}}
}

// pageRecord maps a page onto the optional record fields. Properties that are
// missing or empty stay nil.
func pageRecord(p notionapi.Page) core.ExternalRecord {
	var f core.RecordFields
	if prop, ok := p.Properties[core.PropAmount].(*notionapi.NumberProperty); ok {
		v := prop.Number
		f.Amount = &v
	}
	if prop, ok := p.Properties[core.PropCustomerName].(*notionapi.TitleProperty); ok {
		f.CustomerName = optionalText(prop.Title)
	}
	if prop, ok := p.Properties[core.PropProductName].(*notionapi.RichTextProperty); ok {
		f.ProductName = optionalText(prop.RichText)
	}
	if prop, ok := p.Properties[core.PropOrderDate].(*notionapi.DateProperty); ok && prop.Date != nil && prop.Date.Start != nil {
		v := formatDate(time.Time(*prop.Date.Start))
		f.OrderDate = &v
	}
	if prop, ok := p.Properties[core.PropPaymentMethod].(*notionapi.SelectProperty); ok && prop.Select.Name != "" {
		v := prop.Select.Name
		f.PaymentMethod = &v
	}
	return core.ExternalRecord{ID: p.ID.String(), Fields: f}
}

// formatDate keeps calendar dates in their ISO day form.
func formatDate(t time.Time) string {
	if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func optionalText(rt []notionapi.RichText) *string {
	s := plainText(rt)
	if s == "" {
		return nil
	}
	return &s
}

func plainText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, t := range rt {
		switch {
		case t.PlainText != "":
			b.WriteString(t.PlainText)
		case t.Text != nil:
			b.WriteString(t.Text.Content)
		}
	}
	return b.String()
}
