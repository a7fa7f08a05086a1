package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldRecordID   = "record_id"
	FieldCustomer   = "customer"
	FieldProduct    = "product"
	FieldAmount     = "amount"
	FieldOrderDate  = "order_date"
	FieldPayment    = "payment_method"
	FieldBackend    = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentSales     = "sales"
	ComponentGateway   = "gateway"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentTrace     = "trace"
	ComponentDashboard = "dashboard"
)

// Operations defines standard operation names
const (
	OpCreate  = "create"
	OpQuery   = "query"
	OpSchema  = "schema"
	OpRefresh = "refresh"
	OpMirror  = "mirror"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithSale adds sale-related fields. Customer names are left out.
func (f LogFields) WithSale(product string, amount float64, orderDate, paymentMethod string) LogFields {
	f[FieldProduct] = product
	f[FieldAmount] = amount
	f[FieldOrderDate] = orderDate
	f[FieldPayment] = paymentMethod
	return f
}

// WithRecordID adds the external record id
func (f LogFields) WithRecordID(id string) LogFields {
	f[FieldRecordID] = id
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}