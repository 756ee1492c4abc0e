// Package http exposes the review workflow over HTTP: a JSON API for the
// employee form flow and HTML pages for the supervisor approval flow.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/auth"
	cartahtml "github.com/JimmyYuu29/cartarev/html"
	"github.com/JimmyYuu29/cartarev/render"
)

// ShutdownTimeout is how long in-flight requests get to finish on Close.
const ShutdownTimeout = 5 * time.Second

// Server is the HTTP server for the review workflow. It wires the domain
// services to the routes and owns the listener lifecycle.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	// Addr is the bind address, e.g. ":8080".
	Addr string

	// BaseURL is the externally visible URL prefix used in manager links.
	BaseURL string

	Logger *slog.Logger

	ReviewService cartarev.ReviewService
	Schemas       cartarev.SchemaRegistry
	Validator     *cartarev.Validator
	Auth          *auth.Service
	Tokens        cartarev.TokenService
	Pipeline      *render.Pipeline
	Pages         *cartahtml.Renderer
	Converter     cartarev.Converter
}

// NewServer creates a Server with its routes registered. The service fields
// must be assigned before Open.
func NewServer() *Server {
	s := &Server{
		router: chi.NewRouter(),
		server: &http.Server{},
		Logger: slog.Default(),
	}

	s.router.Use(s.logRequests)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Get("/schemas", s.handleSchemaList)

	s.router.Route("/reviews", func(r chi.Router) {
		r.Post("/", s.handleReviewCreate)
		r.Get("/", s.handleReviewList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleReviewShow)
			r.Delete("/", s.handleReviewDelete)
			r.Get("/data", s.handleReviewData)
			r.Patch("/data", s.handleReviewUpdateFields)
			r.Post("/fields", s.handleReviewUpdateFields)
			r.Post("/submit", s.handleReviewSubmit)
			r.Get("/status", s.handleReviewStatus)
			r.Get("/schema", s.handleReviewSchema)
			r.Post("/approval-codes", s.handleApprovalCodeIssue)
			r.Get("/audit", s.handleReviewAudit)
			r.Get("/preview", s.handleReviewPreview)
			r.Get("/export", s.handleReviewExport)
		})
	})

	s.router.Route("/manager/reviews/{id}", func(r chi.Router) {
		r.Get("/", s.handleManagerPage)
		r.Post("/", s.handleManagerRedeem)
		r.Post("/authorize", s.handleManagerRedeem)
		r.Get("/download", s.handleManagerDownload)
		r.Get("/audit", s.handleManagerAudit)
		r.Get("/info", s.handleManagerInfo)
	})

	s.server.Handler = s.router
	return s
}

// ServeHTTP implements http.Handler, which lets tests drive the server
// without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open begins listening on Addr. It returns immediately; requests are served
// on a background goroutine.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("http server stopped", "error", err)
		}
	}()
	s.Logger.Info("http server listening", "addr", s.ln.Addr().String())
	return nil
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the local base URL of the listening server, for tests.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// baseURL resolves manager links against BaseURL, falling back to the
// listener address.
func (s *Server) baseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return s.URL()
}

// logRequests logs one line per request with status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(begin),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// clientAddr extracts the client host from the request, dropping the port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// actor identifies the requesting employee for the audit trail. There is no
// login on the employee side; the reverse proxy injects the header.
func actor(r *http.Request) string {
	if who := r.Header.Get("X-Employee"); who != "" {
		return who
	}
	return clientAddr(r)
}

// errorStatus maps domain error codes to HTTP status codes.
func errorStatus(code string) int {
	switch code {
	case cartarev.EINVALID:
		return http.StatusBadRequest
	case cartarev.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case cartarev.EFORBIDDEN:
		return http.StatusForbidden
	case cartarev.ENOTFOUND:
		return http.StatusNotFound
	case cartarev.ECONFLICT:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError renders a domain error as JSON. Internal errors are logged and
// masked with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := cartarev.ErrorCode(err), cartarev.ErrorMessage(err)
	status := errorStatus(code)
	if status == http.StatusInternalServerError {
		s.Logger.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "Internal error."
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return cartarev.Errorf(cartarev.EINVALID, "invalid JSON body")
	}
	return nil
}
