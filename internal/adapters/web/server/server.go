package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wsniff/internal/adapters/web"
	"github.com/lcalzada-xor/wsniff/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/wsniff/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr           string
	Service        ports.SnifferService
	Auth           middleware.BasicAuth
	WSManager      *web.WSManager
	SnifferHandler *handlers.SnifferHandler

	controlLimiter *middleware.RateLimiter
	srv            *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, service ports.SnifferService, auth middleware.BasicAuth) *Server {
	return &Server{
		Addr:           addr,
		Service:        service,
		Auth:           auth,
		WSManager:      web.NewWSManager(service),
		SnifferHandler: handlers.NewSnifferHandler(service),
		controlLimiter: middleware.NewRateLimiter(30, time.Minute),
	}
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	// "wsniff-server" is the name of the operation (span)
	return otelhttp.NewHandler(SetupRoutes(s), "wsniff-server")
}

// Run starts the server and the event broadcaster. It returns once ctx is
// done and the listener has shut down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.WSManager.Start(ctx)
	defer s.controlLimiter.Close()

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", ln.Addr())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
