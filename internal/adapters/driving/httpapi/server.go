package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server serves the notification and status API.
type Server struct {
	addr     string
	syncOrch driving.SyncOrchestrator
	listener driving.ChangeListener
	metrics  http.Handler
	router   *mux.Router
}

// NewServer creates a server listening on addr. metrics is optional;
// /metrics is only routed when it is non-nil.
func NewServer(
	addr string,
	syncOrch driving.SyncOrchestrator,
	listener driving.ChangeListener,
	metrics http.Handler,
) *Server {
	s := &Server{
		addr:     addr,
		syncOrch: syncOrch,
		listener: listener,
		metrics:  metrics,
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("HTTP API listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("HTTP API stopped")
	return nil
}

func (s *Server) routes() map[string]map[string]apiFunc {
	return map[string]map[string]apiFunc{
		http.MethodGet: {
			"/v1/status": s.getStatus,
		},
		http.MethodPost: {
			"/v1/resync":                   s.postResync,
			"/v1/topologies/{name}/resync": s.postTopologyResync,
			"/v1/scan":                     s.postScan,
		},
	}
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	for method, handlers := range s.routes() {
		for path, fn := range handlers {
			r.Handle(path, makeHandler(method, path, fn)).Methods(method)
		}
	}

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSON(w, http.StatusNotFound, errorResponse{Error: "page not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	return r
}

func makeHandler(method, path string, fn apiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context(), w, r, mux.Vars(r)); err != nil {
			code := statusFromError(err)
			if code >= http.StatusInternalServerError {
				logger.Error("Handler for %s %s returned error: %v", method, path, err)
			} else {
				logger.Debug("Handler for %s %s rejected request: %v", method, path, err)
			}
			_ = writeJSON(w, code, errorResponse{Error: err.Error()})
		}
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("%s %s", r.Method, r.RequestURI)
		next.ServeHTTP(w, r)
	})
}
