package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/application/services"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
)

// SnapshotHandler handles HTTP requests for portfolio snapshots
type SnapshotHandler struct {
	service *services.AggregatorService
	logger  *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(service *services.AggregatorService, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the snapshot routes on a chi router
func (h *SnapshotHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/snapshot", h.GetWalletSnapshot)
	r.Get("/users/{userID}/snapshot", h.GetUserSnapshot)
	r.Post("/snapshot", h.PostSnapshot)
}

// snapshotEnvelope is the wire response shape
type snapshotEnvelope struct {
	Snapshot     entities.PortfolioSnapshot `json:"snapshot"`
	Confidence   float64                    `json:"confidence"`
	DegradedMode bool                       `json:"degraded_mode"`
	CachedAt     string                     `json:"cached_at"`
}

// GetWalletSnapshot handles GET /api/v1/wallets/{address}/snapshot
func (h *SnapshotHandler) GetWalletSnapshot(w http.ResponseWriter, r *http.Request) {
	scope := entities.WalletScope{
		Mode:    entities.ScopeSingle,
		Address: chi.URLParam(r, "address"),
	}
	h.serveSnapshot(w, r, scope)
}

// GetUserSnapshot handles GET /api/v1/users/{userID}/snapshot
func (h *SnapshotHandler) GetUserSnapshot(w http.ResponseWriter, r *http.Request) {
	scope := entities.WalletScope{
		Mode:   entities.ScopeAll,
		UserID: chi.URLParam(r, "userID"),
	}
	h.serveSnapshot(w, r, scope)
}

// snapshotRequest is the body for POST /api/v1/snapshot
type snapshotRequest struct {
	Scope entities.WalletScope `json:"scope"`
}

// PostSnapshot handles POST /api/v1/snapshot with an explicit scope body
func (h *SnapshotHandler) PostSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.serveSnapshot(w, r, req.Scope)
}

func (h *SnapshotHandler) serveSnapshot(w http.ResponseWriter, r *http.Request, scope entities.WalletScope) {
	resp, err := h.service.GetSnapshot(r.Context(), scope)
	if err != nil {
		if errors.Is(err, services.ErrInvalidScope) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to get snapshot",
			zap.Error(err),
			zap.String("scope", scope.Key()),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to get snapshot")
		return
	}

	h.respondJSON(w, http.StatusOK, snapshotEnvelope{
		Snapshot:     resp.Snapshot,
		Confidence:   resp.Confidence,
		DegradedMode: resp.DegradedMode,
		CachedAt:     resp.CachedAt.UTC().Format(time.RFC3339),
	})
}

func (h *SnapshotHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *SnapshotHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
