package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustgraph/internal/identity"
	"trustgraph/internal/platform/middleware"
	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/audit"
)

// IdentityService is the surface of the identity registry the transport needs.
type IdentityService interface {
	Register(ctx context.Context, account domain.Account, identifier string) (identity.Record, error)
	Update(ctx context.Context, account domain.Account, newIdentifier string) (identity.Record, error)
	Deactivate(ctx context.Context, account domain.Account) error
	Resolve(ctx context.Context, account domain.Account) (string, error)
	ResolveReverse(ctx context.Context, identifier string) (domain.Account, error)
	RegistrationCount(ctx context.Context) (uint64, error)
	Events(ctx context.Context, account domain.Account, limit, offset uint64) ([]audit.Event, error)
	SetPaused(ctx context.Context, caller domain.Account, paused bool) error
	TransferAdmin(ctx context.Context, caller, newAdmin domain.Account) error
}

// IdentityHandler exposes the identity registry over HTTP.
type IdentityHandler struct {
	logger   *slog.Logger
	identity IdentityService
}

func NewIdentityHandler(svc IdentityService, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{logger: logger, identity: svc}
}

// Register mounts the identity routes on the router. The caller account comes
// from the auth middleware, never from the request body.
func (h *IdentityHandler) Register(r chi.Router) {
	r.Route("/identity", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/update", h.handleUpdate)
		r.Post("/deactivate", h.handleDeactivate)
		r.Get("/resolve/{account}", h.handleResolve)
		r.Get("/reverse", h.handleResolveReverse)
		r.Get("/count", h.handleCount)
		r.Get("/events", h.handleEvents)
		r.Post("/admin/pause", h.handlePause)
		r.Post("/admin/transfer", h.handleTransferAdmin)
	})
}

type registerIdentityRequest struct {
	Identifier string `json:"identifier"`
}

type identityRecordResponse struct {
	Subject       domain.Account `json:"subject"`
	Identifier    string         `json:"identifier"`
	RegisteredAt  uint64         `json:"registered_at"`
	LastUpdatedAt uint64         `json:"last_updated_at"`
}

func identityResponse(rec identity.Record) identityRecordResponse {
	return identityRecordResponse{
		Subject:       rec.Subject,
		Identifier:    rec.Identifier,
		RegisteredAt:  rec.RegisteredAt,
		LastUpdatedAt: rec.LastUpdatedAt,
	}
}

func (h *IdentityHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerIdentityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.identity.Register(ctx, middleware.GetCaller(ctx), req.Identifier)
	if err != nil {
		h.logger.WarnContext(ctx, "register identity failed",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, identityResponse(rec))
}

func (h *IdentityHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerIdentityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.identity.Update(ctx, middleware.GetCaller(ctx), req.Identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identityResponse(rec))
}

func (h *IdentityHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.identity.Deactivate(ctx, middleware.GetCaller(ctx)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IdentityHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := domain.Account(chi.URLParam(r, "account"))
	identifier, err := h.identity.Resolve(ctx, account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"identifier": identifier})
}

func (h *IdentityHandler) handleResolveReverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := h.identity.ResolveReverse(ctx, r.URL.Query().Get("identifier"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.Account{"account": account})
}

func (h *IdentityHandler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.identity.RegistrationCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *IdentityHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := domain.Account(r.URL.Query().Get("account"))
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.identity.Events(ctx, account, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

func (h *IdentityHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pauseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.identity.SetPaused(ctx, middleware.GetCaller(ctx), req.Paused); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferAdminRequest struct {
	NewAdmin domain.Account `json:"new_admin"`
}

func (h *IdentityHandler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req transferAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.identity.TransferAdmin(ctx, middleware.GetCaller(ctx), req.NewAdmin); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
