// Package http exposes the cashflow services as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/services"
)

// Pinger reports storage health for the /healthz endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	categories *services.CategoryService
	expenses   *services.TransactionService
	earnings   *services.TransactionService
	budgets    *services.BudgetService
	health     Pinger
	limiter    *ratelimit.Limiter
}

func NewServer(addr string,
	categories *services.CategoryService,
	expenses, earnings *services.TransactionService,
	budgets *services.BudgetService,
	health Pinger,
) *Server {
	s := &Server{
		categories: categories,
		expenses:   expenses,
		earnings:   earnings,
		budgets:    budgets,
		health:     health,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PATCH /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /api/expenses", s.transactionCreator(s.expenses))
	mux.HandleFunc("GET /api/expenses", s.transactionLister(s.expenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.transactionGetter(s.expenses))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.transactionUpdater(s.expenses))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.transactionDeleter(s.expenses))

	mux.HandleFunc("POST /api/earnings", s.transactionCreator(s.earnings))
	mux.HandleFunc("GET /api/earnings", s.transactionLister(s.earnings))
	mux.HandleFunc("GET /api/earnings/{id}", s.transactionGetter(s.earnings))
	mux.HandleFunc("PATCH /api/earnings/{id}", s.transactionUpdater(s.earnings))
	mux.HandleFunc("DELETE /api/earnings/{id}", s.transactionDeleter(s.earnings))

	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /api/budgets/status", s.handleBudgetStatus)
	mux.HandleFunc("GET /api/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PATCH /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	tracing := trace.NewMiddleware(clientIP)
	s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())

	s.Server = http.Server{
		Addr:           addr,
		Handler:        tracing.Middleware(s.limiter.Middleware(clientIP)(mux)),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	return s
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "HTTP server shutting down",
		"tracked_clients", s.limiter.ActiveClients())
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
