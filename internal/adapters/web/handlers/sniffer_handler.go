package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
	"github.com/lcalzada-xor/wsniff/internal/core/services/engine"
)

const maxBodyBytes = 1 << 20

// SnifferHandler exposes the engine control surface over HTTP.
type SnifferHandler struct {
	Service ports.SnifferService
}

// NewSnifferHandler creates a new SnifferHandler
func NewSnifferHandler(service ports.SnifferService) *SnifferHandler {
	return &SnifferHandler{
		Service: service,
	}
}

type interfaceRequest struct {
	Interface string `json:"interface"`
}

// decodeInterface reads an optional {"interface": "..."} body.
func decodeInterface(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.ContentLength == 0 {
		return "", true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req interfaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return "", false
	}
	if req.Interface != "" && !domain.IsValidInterface(req.Interface) {
		http.Error(w, "Invalid interface name", http.StatusBadRequest)
		return "", false
	}
	return req.Interface, true
}

// HandleStart starts a capture session
func (h *SnifferHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	iface, ok := decodeInterface(w, r)
	if !ok {
		return
	}

	if err := h.Service.Start(r.Context(), iface); err != nil {
		log.Printf("Start failed: %v", err)
		var ce *domain.CaptureError
		switch {
		case errors.As(err, &ce):
			http.Error(w, "Failed to start capture: "+err.Error(), http.StatusBadGateway)
		case errors.Is(err, domain.ErrInvalidInterfaceName), errors.Is(err, engine.ErrNoInterface):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to start capture: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status())
}

// HandleStop stops the running session
func (h *SnifferHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Stop(r.Context()); err != nil {
		http.Error(w, "Failed to stop capture: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status())
}

// HandleClear empties the inventory
func (h *SnifferHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.Service.ClearData()
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetInterface changes the capture interface while stopped
func (h *SnifferHandler) HandleSetInterface(w http.ResponseWriter, r *http.Request) {
	iface, ok := decodeInterface(w, r)
	if !ok {
		return
	}
	if iface == "" {
		http.Error(w, "Missing interface", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetInterface(iface); err != nil {
		switch {
		case errors.Is(err, engine.ErrNotStopped):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domain.ErrInvalidInterfaceName):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status())
}

// HandleAccessPoints lists discovered access points
func (h *SnifferHandler) HandleAccessPoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.APList())
}

// HandleStations lists associated stations
func (h *SnifferHandler) HandleStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.AssocList())
}

// HandleStatus reports engine state
func (h *SnifferHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Status())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}
