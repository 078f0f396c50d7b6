package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderUserID carries the caller's identity on every non-user route.
const HeaderUserID = "X-Sharer-User-Id"

const (
	defaultFrom = 0
	defaultSize = 10
)

// Server is the inner-tier HTTP API. It trusts the gateway to have validated
// request shapes but still enforces every business rule itself.
type Server struct {
	users    *service.UserService
	items    *service.ItemService
	bookings *service.BookingService
	requests *service.RequestService
	logger   *zerolog.Logger
	server   *http.Server
}

func NewServer(port int, users *service.UserService, items *service.ItemService, bookings *service.BookingService, requests *service.RequestService, logger *zerolog.Logger) *Server {
	s := &Server{
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		logger:   logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleGetAllUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("PATCH /items/{id}", s.handleUpdateItem)
	mux.HandleFunc("GET /items/{id}", s.handleGetItem)
	mux.HandleFunc("GET /items", s.handleGetOwnerItems)
	mux.HandleFunc("GET /items/search", s.handleSearchItems)
	mux.HandleFunc("POST /items/{id}/comment", s.handleAddComment)

	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("PATCH /bookings/{id}", s.handleUpdateBookingStatus)
	mux.HandleFunc("GET /bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("GET /bookings", s.handleGetUserBookings)
	mux.HandleFunc("GET /bookings/owner", s.handleGetOwnerBookings)
	mux.HandleFunc("GET /bookings/owner/export", s.handleExportOwnerBookings)

	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests", s.handleGetUserRequests)
	mux.HandleFunc("GET /requests/all", s.handleGetOtherUsersRequests)
	mux.HandleFunc("GET /requests/{id}", s.handleGetRequest)

	handler := s.loggingMiddleware(requestIDMiddleware(mux))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return s
}

// Handler exposes the routing stack for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := r.Method + " " + r.URL.Path
		metrics.IncHTTP(endpoint, strconv.Itoa(recorder.status))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Str("request_id", w.Header().Get("X-Request-Id")).
			Msg("http request")
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

// writeServiceError translates the error taxonomy into HTTP statuses; unknown
// errors are logged and masked as a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// callerID reads the identity header; every item, booking and request route
// demands it.
func callerID(r *http.Request) (int64, error) {
	raw := r.Header.Get(HeaderUserID)
	if raw == "" {
		return 0, fmt.Errorf("%s header is required", HeaderUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s header", HeaderUserID)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}

func pageParams(r *http.Request) (from, size int, err error) {
	if from, err = queryInt(r, "from", defaultFrom); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(r, "size", defaultSize); err != nil {
		return 0, 0, err
	}
	return from, size, nil
}
