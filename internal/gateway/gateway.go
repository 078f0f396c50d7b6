package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const headerUserID = "X-Sharer-User-Id"

// Gateway validates request shapes and rate limits callers before anything
// reaches the server tier. Business rules live on the other side.
type Gateway struct {
	cfg      config.GatewayConfig
	client   *Client
	states   domain.StateRepository
	limiters sync.Map // map[string]*rate.Limiter
	logger   *zerolog.Logger
	server   *http.Server
}

func NewGateway(cfg config.GatewayConfig, client *Client, states domain.StateRepository, logger *zerolog.Logger) *Gateway {
	g := &Gateway{
		cfg:    cfg,
		client: client,
		states: states,
		logger: logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", g.validated(g.validateCreateUser, false))
	mux.HandleFunc("PATCH /users/{id}", g.validated(g.validateUpdateUser, false))
	mux.HandleFunc("GET /users", g.passthrough(false))
	mux.HandleFunc("GET /users/{id}", g.passthrough(false))
	mux.HandleFunc("DELETE /users/{id}", g.passthrough(false))

	mux.HandleFunc("POST /items", g.validated(g.validateCreateItem, true))
	mux.HandleFunc("PATCH /items/{id}", g.passthrough(true))
	mux.HandleFunc("GET /items/{id}", g.passthrough(true))
	mux.HandleFunc("GET /items", g.pagedPassthrough())
	mux.HandleFunc("GET /items/search", g.pagedPassthrough())
	mux.HandleFunc("POST /items/{id}/comment", g.validated(g.validateComment, true))

	mux.HandleFunc("POST /bookings", g.validated(g.validateCreateBooking, true))
	mux.HandleFunc("PATCH /bookings/{id}", g.validated(g.validateApproveParam, true))
	mux.HandleFunc("GET /bookings/{id}", g.passthrough(true))
	mux.HandleFunc("GET /bookings", g.pagedPassthrough())
	mux.HandleFunc("GET /bookings/owner", g.pagedPassthrough())
	mux.HandleFunc("GET /bookings/owner/export", g.passthrough(true))

	mux.HandleFunc("POST /requests", g.validated(g.validateCreateRequest, true))
	mux.HandleFunc("GET /requests", g.passthrough(true))
	mux.HandleFunc("GET /requests/all", g.pagedPassthrough())
	mux.HandleFunc("GET /requests/{id}", g.passthrough(true))

	handler := g.loggingMiddleware(g.rateLimitMiddleware(requestIDMiddleware(mux)))

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return g
}

// Handler exposes the routing stack for tests.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

// passthrough forwards without body validation, optionally requiring the
// identity header.
func (g *Gateway) passthrough(needsUser bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if needsUser {
			if _, err := callerID(r); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		g.forward(w, r, nil)
	}
}

// pagedPassthrough additionally checks from/size before forwarding.
func (g *Gateway) pagedPassthrough() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := callerID(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validatePageParams(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.forward(w, r, nil)
	}
}

type bodyValidator func(r *http.Request, body []byte) error

// validated buffers the body, runs the validator and forwards the identical
// bytes upstream.
func (g *Gateway) validated(validate bodyValidator, needsUser bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if needsUser {
			if _, err := callerID(r); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read request body")
			return
		}

		if err := validate(r, body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.forward(w, r, body)
	}
}

func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	if body == nil && r.Body != nil {
		buffered, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read request body")
			return
		}
		body = buffered
	}

	resp, err := g.client.Forward(r.Context(), r, body)
	if err != nil {
		g.logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream error")
		writeError(w, http.StatusBadGateway, "server unavailable")
		return
	}
	defer resp.Body.Close()

	for _, h := range []string{"Content-Type", "Content-Disposition"} {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		g.logger.Error().Err(err).Msg("relay response error")
	}
}

func (g *Gateway) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		if g.states != nil && g.cfg.RateLimit.Requests > 0 {
			window := time.Duration(g.cfg.RateLimit.WindowSeconds) * time.Second
			allowed, err := g.states.CheckRateLimit(r.Context(), key, g.cfg.RateLimit.Requests, window)
			if err != nil {
				g.logger.Error().Err(err).Msg("rate limit check error")
			} else if !allowed {
				metrics.IncRateLimited()
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}

		if g.cfg.RateLimit.RPS > 0 && !g.getLimiter(key).Allow() {
			metrics.IncRateLimited()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) getLimiter(key string) *rate.Limiter {
	if v, ok := g.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := g.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(g.cfg.RateLimit.RPS), burst)
	actual, loaded := g.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

// clientKey identifies a caller for rate limiting: the identity header when
// present, the remote host otherwise.
func clientKey(r *http.Request) string {
	if userID := r.Header.Get(headerUserID); userID != "" {
		return userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Id") == "" {
			r.Header.Set("X-Request-Id", uuid.NewString())
		}
		w.Header().Set("X-Request-Id", r.Header.Get("X-Request-Id"))
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		g.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Str("request_id", r.Header.Get("X-Request-Id")).
			Msg("gateway request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func callerID(r *http.Request) (int64, error) {
	raw := r.Header.Get(headerUserID)
	if raw == "" {
		return 0, fmt.Errorf("%s header is required", headerUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s header", headerUserID)
	}
	return id, nil
}
