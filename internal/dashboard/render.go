package dashboard

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"salesdash/internal/core"
)

// Render writes the state as plain-text tables.
func Render(w io.Writer, st State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := func(format string, args ...any) { fmt.Fprintf(tw, format, args...) }

	if st.Err != nil && st.Source == SourceNone {
		p("Could not load sales data: %v\n", st.Err)
		p("Run the command again to retry.\n")
		return tw.Flush()
	}

	sum := Summarize(st.Dashboard)
	if st.Source == SourceCache {
		p("Showing cached data from %s\n", st.UpdatedAt.Local().Format(time.DateTime))
	}
	p("Total revenue\t%s\n", core.FormatPHP(sum.TotalRevenue))
	p("Total orders\t%d\n", sum.TotalOrders)
	p("Average order\t%s\n", core.FormatPHP(sum.AverageOrderValue))
	p("Products\t%d\n", sum.ProductCount)

	p("\nMONTH\tREVENUE\tORDERS\tCUSTOMERS\n")
	for _, m := range st.Dashboard.Monthly {
		p("%s\t%s\t%d\t%d\n", m.Name, core.FormatPHP(m.Revenue), m.Orders, m.Customers)
	}

	p("\nPRODUCT\tREVENUE\tCOLOR\n")
	for _, pr := range st.Dashboard.Products {
		p("%s\t%s\t%s\n", pr.Name, core.FormatPHP(pr.Value), pr.Color)
	}

	p("\nORDER\tCUSTOMER\tPRODUCT\tDATE\tPAYMENT\tAMOUNT\tSTATUS\n")
	for _, o := range st.Dashboard.Orders {
		p("%s\t%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.Customer, o.Product, o.Date, o.PaymentMethod, o.Amount, o.Status)
	}
	return tw.Flush()
}
