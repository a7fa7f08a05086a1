package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/metrics"
	"salesdash/internal/middleware/ratelimit"
	"salesdash/internal/middleware/security"
	"salesdash/internal/middleware/trace"
)

// SalesGateway is the use-case surface the proxy routes call into.
type SalesGateway interface {
	CreateSale(ctx context.Context, d core.SaleDraft) (string, error)
	FetchDashboard(ctx context.Context) (core.Dashboard, error)
	TestDatabase(ctx context.Context) (core.DatabaseSchema, error)
}

// Options carries everything the gateway needs; nothing is read from the
// environment here.
type Options struct {
	Addr    string
	Service SalesGateway

	// RawDatabaseID is the identifier as configured, DatabaseID its dashed form.
	RawDatabaseID string
	DatabaseID    string

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	Metrics *metrics.Metrics
	Logger  *log.Logger
	Now     func() time.Time
}

type Server struct {
	http.Server

	svc           SalesGateway
	rawDatabaseID string
	databaseID    string

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	metrics  *metrics.Metrics
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		Server:        http.Server{Addr: opts.Addr, ReadHeaderTimeout: 10 * time.Second},
		svc:           opts.Service,
		rawDatabaseID: opts.RawDatabaseID,
		databaseID:    opts.DatabaseID,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: opts.RateLimitRPS,
			Burst:             opts.RateLimitBurst,
		}),
		detector: security.NewDetector(),
		metrics:  opts.Metrics,
		now:      now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleLiveness)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/proxy/health", s.handleHealth)
	mux.HandleFunc("/proxy/debug", s.handleDebug)
	mux.HandleFunc("/proxy/test-database", s.handleTestDatabase)
	mux.HandleFunc("/proxy/notion", s.handleSales)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, trace.MuxRoutes(mux), s.metrics.ObserveHTTP)

	// Outermost first: trace sees every request, including rejected ones.
	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, writeRateLimited, http.MethodPost)(h)
	h = security.NewCORS(opts.AllowedOrigins).Middleware(writeOriginRejected)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(h)
	h = log.Middleware(logger)(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

func writeOriginRejected(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusForbidden, "Origin not allowed").Write(w)
}
