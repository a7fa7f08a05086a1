package core

// MonthlyBucket aggregates sales for one month label (e.g. "Jan 2025").
// Customers counts sales, not distinct customers.
type MonthlyBucket struct {
	Name      string  `json:"name"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
}

// ProductBucket aggregates revenue for one product name.
type ProductBucket struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// OrderEntry is one row of the recent-orders feed.
type OrderEntry struct {
	ID            string `json:"id"`
	Customer      string `json:"customer"`
	Product       string `json:"product"`
	Date          string `json:"date"`
	PaymentMethod string `json:"paymentMethod"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
}

// Dashboard holds the three chart-ready views produced by one aggregation run.
type Dashboard struct {
	Monthly  []MonthlyBucket `json:"monthly"`
	Products []ProductBucket `json:"products"`
	Orders   []OrderEntry    `json:"orders"`
}

// NewDashboard returns a dashboard with empty, non-nil collections.
func NewDashboard() Dashboard {
	return Dashboard{
		Monthly:  []MonthlyBucket{},
		Products: []ProductBucket{},
		Orders:   []OrderEntry{},
	}
}

// Clone returns a deep copy so updates never alias the receiver.
func (d Dashboard) Clone() Dashboard {
	return Dashboard{
		Monthly:  append(make([]MonthlyBucket, 0, len(d.Monthly)+1), d.Monthly...),
		Products: append(make([]ProductBucket, 0, len(d.Products)+1), d.Products...),
		Orders:   append(make([]OrderEntry, 0, len(d.Orders)+1), d.Orders...),
	}
}
