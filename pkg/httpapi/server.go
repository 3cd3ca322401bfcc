// Package httpapi serves board layouts over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /breakpoints
//	GET  /boards/{board}/layouts
//	GET  /boards/{board}/layouts/events        server-sent events, one per change
//	PUT  /boards/{board}/layouts/{breakpoint}  body: [{"i","x","y","w","h"}, ...]
//	POST /boards/{board}/layouts/{breakpoint}/sync
//
// The sync route runs the layout synchronizer against the stored layout and
// returns the placements without persisting them; clients persist by PUTting
// the layout after the user interacts. Errors are JSON objects with a
// machine-readable code and a message.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
	"github.com/lemu/seamless-sea-sub003/pkg/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Breakpoints grid.Breakpoints
	RowCeiling  int
	Logger      *log.Logger
}

// Server is the layout HTTP API over a repository.
type Server struct {
	repo   store.Repository
	bps    grid.Breakpoints
	sync   *grid.Synchronizer
	logger *log.Logger
}

// New creates a server. Zero options use the default breakpoints and row
// ceiling.
func New(repo store.Repository, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if len(opts.Breakpoints) == 0 {
		opts.Breakpoints = grid.DefaultBreakpoints()
	}
	return &Server{
		repo:   repo,
		bps:    opts.Breakpoints.Normalize(),
		sync:   grid.NewSynchronizer(opts.RowCeiling, opts.Logger),
		logger: opts.Logger,
	}
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(withSecurityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Get("/breakpoints", s.handleBreakpoints)
	r.Route("/boards/{board}/layouts", func(r chi.Router) {
		r.Get("/", s.handleGetLayouts)
		r.Get("/events", s.handleEvents)
		r.Put("/{breakpoint}", s.handlePutLayout)
		r.Post("/{breakpoint}/sync", s.handleSync)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    string(errors.ErrCodeUnsupported),
			Message: fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields...)
		} else {
			s.logger.Debug("request", fields...)
		}
	})
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// boardParam reads and validates the {board} URL parameter.
func boardParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "board")
	if err := errors.ValidateBoardID(id); err != nil {
		return "", err
	}
	return id, nil
}

// breakpointParam resolves the {breakpoint} URL parameter against the
// configured tiers.
func (s *Server) breakpointParam(r *http.Request) (grid.Breakpoint, error) {
	name := chi.URLParam(r, "breakpoint")
	if err := errors.ValidateBreakpointName(name); err != nil {
		return grid.Breakpoint{}, err
	}
	bp, ok := s.bps.Lookup(name)
	if !ok {
		return grid.Breakpoint{}, errors.New(errors.ErrCodeInvalidBreakpoint, "unknown breakpoint %q", name)
	}
	return bp, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		// Rect decoding already reports INVALID_SNAPSHOT.
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), errorBody{Code: string(code), Message: errors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
