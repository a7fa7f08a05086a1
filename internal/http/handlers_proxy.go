package http

import (
	"errors"
	"net/http"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/records"
)

// isoMillis matches the timestamps browsers produce with toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

func (s *Server) timestamp() string {
	return s.now().UTC().Format(isoMillis)
}

// requestLogger carries the request id set by the trace middleware.
func (s *Server) requestLogger(r *http.Request) *log.StructuredLogger {
	return log.NewStructuredLogger(log.FromContext(r.Context()).WithComponent(log.ComponentGateway))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"status":        "ok",
		"timestamp":     s.timestamp(),
		"databaseId":    s.databaseID,
		"rawDatabaseId": s.rawDatabaseID,
	}).Write(w)
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"rawDatabaseId":       s.rawDatabaseID,
		"formattedDatabaseId": s.databaseID,
		"timestamp":           s.timestamp(),
	}).Write(w)
}

func (s *Server) handleTestDatabase(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	schema, err := s.svc.TestDatabase(r.Context())
	if err != nil {
		s.requestLogger(r).LogError(r.Context(), "Database connection test failed", err, log.ComponentGateway, log.OpSchema, log.NewFields())
		NewJSONResponse().Status(records.StatusCode(err)).Body(map[string]any{
			"status":  "error",
			"message": "Failed to connect to database",
			"error":   records.Message(err),
		}).Write(w)
		return
	}

	NewJSONResponse().Body(map[string]any{
		"status":  "success",
		"message": "Database connection successful",
		"data":    schema,
	}).Write(w)
}

// handleSales serves both directions of the sales proxy.
func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFetchSales(w, r)
	case http.MethodPost:
		s.handleCreateSale(w, r)
	default:
		MethodNotAllowedError(http.MethodGet, http.MethodPost).Write(w)
	}
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	draft, err := ParseSaleDraft(parser)
	if err != nil {
		BadRequestError("Invalid amount").Write(w)
		return
	}
	if missing := draft.MissingFields(); len(missing) > 0 {
		MissingFieldsResponse(missing).Write(w)
		return
	}

	id, err := s.svc.CreateSale(r.Context(), draft)
	if err != nil {
		var mf *core.MissingFieldsError
		switch {
		case errors.As(err, &mf):
			MissingFieldsResponse(mf.Fields).Write(w)
		case errors.Is(err, core.ErrInvalidAmount):
			BadRequestError("Invalid amount").Write(w)
		default:
			s.requestLogger(r).LogError(r.Context(), "Sale creation failed", err, log.ComponentGateway, log.OpCreate,
				log.NewFields().WithSale(draft.ProductName, draft.Amount, draft.Date, draft.PaymentMethod))
			NewJSONResponse().Status(records.StatusCode(err)).Body(map[string]any{
				"status":  "error",
				"message": "Failed to add sale",
				"error":   records.Message(err),
			}).Write(w)
		}
		return
	}

	s.requestLogger(r).LogSaleCreated(r.Context(), draft.ProductName, draft.Amount, draft.Date, draft.PaymentMethod, id)
	NewJSONResponse().Body(map[string]any{
		"status":  "success",
		"message": "Sale added successfully",
		"pageId":  id,
	}).Write(w)
}

// handleFetchSales reports every failure as a 500 with a generic message.
func (s *Server) handleFetchSales(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dash, err := s.svc.FetchDashboard(r.Context())
	if err != nil {
		s.requestLogger(r).LogError(r.Context(), "Sales fetch failed", err, log.ComponentGateway, log.OpQuery, log.NewFields())
		NewJSONResponse().Status(http.StatusInternalServerError).Body(map[string]any{
			"success": false,
			"message": "Failed to fetch sales data",
			"error":   err.Error(),
		}).Write(w)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentDashboard).DebugContext(r.Context(), "Dashboard aggregated",
		"months", len(dash.Monthly),
		"products", len(dash.Products),
		"orders", len(dash.Orders),
		"duration_ms", time.Since(start).Milliseconds())

	NewJSONResponse().Body(map[string]any{
		"success":  true,
		"monthly":  dash.Monthly,
		"products": dash.Products,
		"orders":   dash.Orders,
	}).Write(w)
}
