package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wsniff/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes builds the API router.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	auth := middleware.BasicAuthMiddleware(s.Auth)
	limit := middleware.RateLimitMiddleware(s.controlLimiter)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}
	control := func(h http.HandlerFunc) http.Handler {
		return limit(auth(h))
	}

	api := r.PathPrefix("/api").Subrouter()

	// Session control
	api.Handle("/start", control(s.SnifferHandler.HandleStart)).Methods(http.MethodPost)
	api.Handle("/stop", control(s.SnifferHandler.HandleStop)).Methods(http.MethodPost)
	api.Handle("/clear", control(s.SnifferHandler.HandleClear)).Methods(http.MethodPost)
	api.Handle("/interface", control(s.SnifferHandler.HandleSetInterface)).Methods(http.MethodPut)

	// Inventory
	api.Handle("/aps", protect(s.SnifferHandler.HandleAccessPoints)).Methods(http.MethodGet)
	api.Handle("/stations", protect(s.SnifferHandler.HandleStations)).Methods(http.MethodGet)
	api.Handle("/status", protect(s.SnifferHandler.HandleStatus)).Methods(http.MethodGet)

	// Event stream
	r.Handle("/ws", protect(s.WSManager.HandleWebSocket)).Methods(http.MethodGet)

	// Metrics endpoint
	r.Handle("/metrics", auth(promhttp.Handler())).Methods(http.MethodGet)

	return r
}
