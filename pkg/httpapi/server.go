// Package httpapi exposes the lending book over a local HTTP API.
// Handlers stay thin and delegate to book.Book.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shunichi-ikebuchi/lendbook/pkg/book"
)

// Server wires handlers and middleware using chi.
type Server struct {
	book *book.Book
	log  *slog.Logger
	rt   *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(b *book.Book, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(metricsMiddleware)
	r.Use(recoverer(logger))

	s := &Server{book: b, log: logger, rt: r}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
	s.rt.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.listTransactions)
			r.Post("/", s.createTransaction)
			r.Get("/{id}", s.getTransaction)
			r.Put("/{id}/deadline", s.updateDeadline)
		})
		r.Get("/balances", s.balances)
		r.Get("/totals", s.totals)
		r.Get("/people", s.people)
		r.Get("/paid-back", s.paidBack)
		r.Get("/timeline", s.timeline)
	})

	s.rt.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	s.rt.Handle("/metrics", metricsHandler())
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	toJSON(w, status, ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
