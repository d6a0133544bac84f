// Package httpapi exposes the bot over HTTP: a session event API for
// transports that deliver customer messages as webhooks, read-only admin
// listings and the Prometheus metrics endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/bakecake/internal/logging"
	"github.com/aretw0/bakecake/pkg/domain"
)

// Bot is the dialogue surface the API drives.
type Bot interface {
	Start(ctx context.Context, sessionID, displayName string) (domain.State, []domain.Reply, error)
	HandleEvent(ctx context.Context, sessionID, input string) (domain.State, []domain.Reply, error)
}

// OrderLister lists all orders for the admin view.
type OrderLister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

// CustomerLister lists all customers for the admin view.
type CustomerLister interface {
	List(ctx context.Context) ([]domain.Customer, error)
}

// Config wires the handler's collaborators. Orders, Customers and Metrics
// are optional; their routes are simply absent when nil.
type Config struct {
	Orders     OrderLister
	Customers  CustomerLister
	Metrics    http.Handler
	PolicyPath string
	Logger     *slog.Logger
}

type server struct {
	bot    Bot
	cfg    Config
	logger *slog.Logger
}

// NewHandler builds the HTTP handler.
func NewHandler(bot Bot, cfg Config) http.Handler {
	s := &server{bot: bot, cfg: cfg, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions/{sessionID}/start", s.handleStart)
		r.Post("/sessions/{sessionID}/events", s.handleEvent)
		r.Get("/policy", s.handlePolicy)
	})
	if cfg.Orders != nil {
		r.Get("/admin/orders", s.handleOrders)
	}
	if cfg.Customers != nil {
		r.Get("/admin/customers", s.handleCustomers)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	return r
}

type startRequest struct {
	DisplayName string `json:"display_name"`
}

type eventRequest struct {
	Text string `json:"text"`
}

type conversationResponse struct {
	State   domain.State   `json:"state"`
	Replies []domain.Reply `json:"replies"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	// The body is optional: a bare start is a nameless greeting.
	var body startRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	state, replies, err := s.bot.Start(r.Context(), sessionID, body.DisplayName)
	if err != nil {
		s.logger.Error("start failed", "session_id", sessionID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, conversationResponse{State: state, Replies: replies})
}

func (s *server) handleEvent(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body eventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	state, replies, err := s.bot.HandleEvent(r.Context(), sessionID, body.Text)
	if err != nil {
		s.logger.Error("event failed", "session_id", sessionID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, conversationResponse{State: state, Replies: replies})
}

func (s *server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	if s.cfg.PolicyPath == "" {
		http.Error(w, "no policy configured", http.StatusNotFound)
		return
	}
	data, err := os.ReadFile(s.cfg.PolicyPath)
	if err != nil {
		s.logger.Error("failed to read policy", "path", s.cfg.PolicyPath, "err", err)
		http.Error(w, "policy unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(data)
}

func (s *server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.cfg.Orders.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list orders", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, orders)
}

func (s *server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.cfg.Customers.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list customers", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, customers)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}
