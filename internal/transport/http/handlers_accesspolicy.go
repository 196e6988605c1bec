package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustgraph/internal/accesspolicy"
	"trustgraph/internal/platform/middleware"
	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/audit"
)

// AccessPolicyService is the surface of the policy store the transport needs.
type AccessPolicyService interface {
	SetPolicy(ctx context.Context, caller domain.Account, policy accesspolicy.Policy) error
	CheckAccess(ctx context.Context, caller domain.Account, proofHash, credentialType string) (bool, error)
	PolicyDetails(ctx context.Context, policyID string) (accesspolicy.Policy, error)
	VerifierEvents(ctx context.Context, verifier domain.Account, credentialType string, limit, offset uint64) ([]audit.Event, error)
	PolicyCount(ctx context.Context) (uint64, error)
	SetPaused(ctx context.Context, caller domain.Account, paused bool) error
	TransferAdmin(ctx context.Context, caller, newAdmin domain.Account) error
}

// AccessPolicyHandler exposes the policy store over HTTP.
type AccessPolicyHandler struct {
	logger   *slog.Logger
	policies AccessPolicyService
}

func NewAccessPolicyHandler(svc AccessPolicyService, logger *slog.Logger) *AccessPolicyHandler {
	return &AccessPolicyHandler{logger: logger, policies: svc}
}

func (h *AccessPolicyHandler) Register(r chi.Router) {
	r.Route("/policy", func(r chi.Router) {
		r.Put("/", h.handleSetPolicy)
		r.Post("/check", h.handleCheckAccess)
		r.Get("/count", h.handleCount)
		r.Get("/events", h.handleEvents)
		r.Get("/{policyID}", h.handleDetails)
		r.Post("/admin/pause", h.handlePause)
		r.Post("/admin/transfer", h.handleTransferAdmin)
	})
}

type policyRequest struct {
	ID             string          `json:"id"`
	Verifier       domain.Account  `json:"verifier"`
	CredentialType string          `json:"credential_type"`
	Subject        *domain.Account `json:"subject,omitempty"`
	Allowed        bool            `json:"allowed"`
}

func (h *AccessPolicyHandler) handleSetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req policyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	policy := accesspolicy.Policy{
		ID:             req.ID,
		Verifier:       req.Verifier,
		CredentialType: req.CredentialType,
		Subject:        req.Subject,
		Allowed:        req.Allowed,
	}
	if err := h.policies.SetPolicy(ctx, middleware.GetCaller(ctx), policy); err != nil {
		h.logger.WarnContext(ctx, "set policy failed",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkAccessRequest struct {
	ProofHash      string `json:"proof_hash"`
	CredentialType string `json:"credential_type"`
}

func (h *AccessPolicyHandler) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req checkAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	allowed, err := h.policies.CheckAccess(ctx, middleware.GetCaller(ctx), req.ProofHash, req.CredentialType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

func (h *AccessPolicyHandler) handleDetails(w http.ResponseWriter, r *http.Request) {
	policy, err := h.policies.PolicyDetails(r.Context(), chi.URLParam(r, "policyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policyRequest{
		ID:             policy.ID,
		Verifier:       policy.Verifier,
		CredentialType: policy.CredentialType,
		Subject:        policy.Subject,
		Allowed:        policy.Allowed,
	})
}

func (h *AccessPolicyHandler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.policies.PolicyCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *AccessPolicyHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.policies.VerifierEvents(ctx,
		domain.Account(r.URL.Query().Get("verifier")),
		r.URL.Query().Get("credential_type"),
		limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *AccessPolicyHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pauseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.policies.SetPaused(ctx, middleware.GetCaller(ctx), req.Paused); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccessPolicyHandler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req transferAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.policies.TransferAdmin(ctx, middleware.GetCaller(ctx), req.NewAdmin); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
