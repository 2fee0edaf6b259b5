package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"price-registry/internal/application"
	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/auth"
	"price-registry/internal/infrastructure/config"
	"price-registry/internal/infrastructure/logx"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
	Handler() http.Handler
}

type Server struct {
	registry *application.PriceRegistry
	ping     func(context.Context) error
	metrics  HTTPMetrics
	limiter  *RateLimiter
	maxBody  int64
}

type ServerOption func(*Server)

func WithReadyCheck(ping func(context.Context) error) ServerOption {
	return func(s *Server) { s.ping = ping }
}

func WithMetrics(m HTTPMetrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

func WithWriteLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) { s.limiter = rl }
}

// WithMaxBodyBytes caps the size of write request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

func NewServer(registry *application.PriceRegistry, opts ...ServerOption) *Server {
	s := &Server{registry: registry, maxBody: config.DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type setPriceRequest struct {
	Pair      string  `json:"pair"`
	Price     *int64  `json:"price"`
	Provider  string  `json:"provider"`
	Nonce     string  `json:"nonce"`
	IssuedAt  *uint64 `json:"issued_at"`
	Signature string  `json:"signature"`
}

type recordResponse struct {
	Pair      string `json:"pair"`
	Price     int64  `json:"price"`
	Timestamp uint64 `json:"timestamp"`
	Provider  string `json:"provider"`
}

func (s *Server) SetPrice(w http.ResponseWriter, r *http.Request) {
	var body setPriceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Price == nil {
		writeError(w, http.StatusBadRequest, "price is required")
		return
	}
	if body.IssuedAt == nil {
		writeError(w, http.StatusBadRequest, "issued_at is required")
		return
	}
	provider, err := domain.ParseAddress(body.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid provider address")
		return
	}
	proof, err := auth.ParseProof(body.Nonce, *body.IssuedAt, body.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature encoding")
		return
	}

	ctx := auth.WithProof(r.Context(), proof)
	if err := s.registry.SetPrice(ctx, domain.Pair(body.Pair), *body.Price, provider); err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	rec, found, err := s.registry.GetRecord(r.Context(), pair)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	if !found {
		writeAppError(r.Context(), w, application.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{
		Pair:      string(rec.Pair),
		Price:     rec.Price,
		Timestamp: rec.Timestamp,
		Provider:  rec.Provider.String(),
	})
}

func (s *Server) GetPrice(w http.ResponseWriter, r *http.Request) {
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	price, found, err := s.registry.GetPrice(r.Context(), pair)
	respondField(r.Context(), w, pair, "price", price, found, err)
}

func (s *Server) GetTimestamp(w http.ResponseWriter, r *http.Request) {
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	ts, found, err := s.registry.GetTimestamp(r.Context(), pair)
	respondField(r.Context(), w, pair, "timestamp", ts, found, err)
}

func (s *Server) GetProvider(w http.ResponseWriter, r *http.Request) {
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	provider, found, err := s.registry.GetProvider(r.Context(), pair)
	respondField(r.Context(), w, pair, "provider", provider.String(), found, err)
}

func (s *Server) IsFresh(w http.ResponseWriter, r *http.Request) {
	pair, ok := bindPair(w, r)
	if !ok {
		return
	}
	var maxAge uint64
	if err := runtime.BindQueryParameter("form", true, true, "max_age", r.URL.Query(), &maxAge); err != nil {
		writeError(w, http.StatusBadRequest, "max_age must be a non-negative integer")
		return
	}
	fresh, err := s.registry.IsFresh(r.Context(), pair, maxAge)
	if err != nil {
		writeAppError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pair": string(pair), "max_age": maxAge, "fresh": fresh})
}

func bindPair(w http.ResponseWriter, r *http.Request) (domain.Pair, bool) {
	var pair string
	if err := runtime.BindQueryParameter("form", true, true, "pair", r.URL.Query(), &pair); err != nil {
		writeError(w, http.StatusBadRequest, "pair is required")
		return "", false
	}
	return domain.Pair(pair), true
}

func respondField[T any](ctx context.Context, w http.ResponseWriter, pair domain.Pair, name string, v T, found bool, err error) {
	if err != nil {
		writeAppError(ctx, w, err)
		return
	}
	if !found {
		writeAppError(ctx, w, application.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pair": string(pair), name: v})
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func writeAppError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	default:
		logx.WithFields(ctx).Error("http.internal_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
