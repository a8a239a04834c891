package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
	"github.com/wb-finances/wb-finances-mcp-server/internal/version"
)

const shutdownTimeout = 10 * time.Second

// HTTPOptions configures the HTTP transport. An empty Token leaves the
// JSON-RPC endpoint open.
type HTTPOptions struct {
	Token     string
	Allowlist string
	Logger    *logrus.Entry
}

// NewHTTPHandler serves MCP JSON-RPC requests via POST /, plus /health and /version.
// Expects a single JSON-RPC request per call.
func NewHTTPHandler(server *Server, opts HTTPOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(version.Get())
	})

	r.Group(func(r chi.Router) {
		if opts.Token != "" {
			r.Use(NewGuard(opts.Token, opts.Allowlist))
		}
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req protocol.Request
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, protocol.Response{JSONRPC: "2.0", Error: &protocol.ResponseError{Code: protocol.CodeParseError, Message: "invalid JSON"}}, http.StatusBadRequest)
				return
			}

			resp, err := server.Handle(r.Context(), req)
			if err != nil {
				writeJSON(w, WriteError(req.ID, protocol.CodeInternalError, "internal error", err), http.StatusInternalServerError)
				return
			}

			writeJSON(w, resp, http.StatusOK)
		})
	})

	return r
}

// RunHTTP listens on addr until ctx is cancelled, then shuts down gracefully.
func RunHTTP(ctx context.Context, server *Server, addr string, opts HTTPOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(server, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("HTTP MCP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
			return srv.Close()
		}
		return nil
	}
}

func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Debug("http request")
		})
	}
}

func writeJSON(w http.ResponseWriter, resp protocol.Response, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}
