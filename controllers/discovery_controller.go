package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"astromatch_server/middleware"
	"astromatch_server/services"
)

// DiscoveryController exposes the swipe feed: current candidate, like, pass
// and explicit refill.
type DiscoveryController struct {
	DiscoveryService *services.DiscoveryService
}

// NewDiscoveryController initializes the discovery controller
func NewDiscoveryController(service *services.DiscoveryService) *DiscoveryController {
	return &DiscoveryController{DiscoveryService: service}
}

func (c *DiscoveryController) session(w http.ResponseWriter, r *http.Request) (*services.DiscoverySession, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Not authenticated"}`, http.StatusUnauthorized)
		return nil, false
	}
	return c.DiscoveryService.Session(userID), true
}

// GetCurrent returns the session snapshot, kicking off the initial refill when
// the session is still idle.
func (c *DiscoveryController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	if session.Snapshot().State == services.StateIdle {
		// First visit; failures surface through the snapshot's error field
		_ = session.Refill(r.Context(), true)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

// Refill re-fetches the candidate queue on explicit user retry
func (c *DiscoveryController) Refill(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	if err := session.Refill(r.Context(), true); err != nil {
		if errors.Is(err, services.ErrIncompleteBirthData) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPreconditionFailed)
			json.NewEncoder(w).Encode(session.Snapshot())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(session.Snapshot())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

// Like records a liked interaction for the current candidate and advances
func (c *DiscoveryController) Like(w http.ResponseWriter, r *http.Request) {
	c.swipe(w, r, func(s *services.DiscoverySession) error { return s.Like(r.Context()) })
}

// Pass records a passed interaction for the current candidate and advances
func (c *DiscoveryController) Pass(w http.ResponseWriter, r *http.Request) {
	c.swipe(w, r, func(s *services.DiscoverySession) error { return s.Pass(r.Context()) })
}

func (c *DiscoveryController) swipe(w http.ResponseWriter, r *http.Request, action func(*services.DiscoverySession) error) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	if err := action(session); err != nil {
		if errors.Is(err, services.ErrNoCandidate) {
			http.Error(w, `{"error": "No candidate to act on"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error": "Failed to record interaction"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session.Snapshot())
}

// CloseSession tears down the user's discovery session
func (c *DiscoveryController) CloseSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	c.DiscoveryService.CloseSession(userID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}
