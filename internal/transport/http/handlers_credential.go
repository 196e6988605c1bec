package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustgraph/internal/credential"
	"trustgraph/internal/platform/middleware"
	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/audit"
)

// CredentialService is the surface of the credential store the transport needs.
type CredentialService interface {
	AuthorizeIssuer(ctx context.Context, caller, issuer domain.Account) error
	RevokeIssuerAuthorization(ctx context.Context, caller, issuer domain.Account) error
	IsIssuerAuthorized(ctx context.Context, issuer domain.Account) (bool, error)
	Issue(ctx context.Context, issuer domain.Account, hash string, subject domain.Account, expiresAt *uint64) (credential.Record, error)
	Revoke(ctx context.Context, issuer domain.Account, hash string) error
	IsValid(ctx context.Context, hash string) (bool, error)
	Details(ctx context.Context, hash string) (credential.Record, error)
	CredentialCount(ctx context.Context) (uint64, error)
	Events(ctx context.Context, issuer domain.Account, limit, offset uint64) ([]audit.Event, error)
	SetPaused(ctx context.Context, caller domain.Account, paused bool) error
	TransferAdmin(ctx context.Context, caller, newAdmin domain.Account) error
}

// CredentialHandler exposes the credential store over HTTP.
type CredentialHandler struct {
	logger      *slog.Logger
	credentials CredentialService
}

func NewCredentialHandler(svc CredentialService, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{logger: logger, credentials: svc}
}

func (h *CredentialHandler) Register(r chi.Router) {
	r.Route("/credential", func(r chi.Router) {
		r.Post("/issuers", h.handleAuthorizeIssuer)
		r.Delete("/issuers/{issuer}", h.handleRevokeIssuer)
		r.Get("/issuers/{issuer}", h.handleIssuerStatus)
		r.Post("/issue", h.handleIssue)
		r.Post("/revoke", h.handleRevoke)
		r.Get("/count", h.handleCount)
		r.Get("/events", h.handleEvents)
		r.Get("/{hash}", h.handleDetails)
		r.Get("/{hash}/valid", h.handleIsValid)
		r.Post("/admin/pause", h.handlePause)
		r.Post("/admin/transfer", h.handleTransferAdmin)
	})
}

type issuerRequest struct {
	Issuer domain.Account `json:"issuer"`
}

func (h *CredentialHandler) handleAuthorizeIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req issuerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.credentials.AuthorizeIssuer(ctx, middleware.GetCaller(ctx), req.Issuer); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CredentialHandler) handleRevokeIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuer := domain.Account(chi.URLParam(r, "issuer"))
	if err := h.credentials.RevokeIssuerAuthorization(ctx, middleware.GetCaller(ctx), issuer); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CredentialHandler) handleIssuerStatus(w http.ResponseWriter, r *http.Request) {
	authorized, err := h.credentials.IsIssuerAuthorized(r.Context(), domain.Account(chi.URLParam(r, "issuer")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authorized": authorized})
}

type issueRequest struct {
	Hash      string         `json:"hash"`
	Subject   domain.Account `json:"subject"`
	ExpiresAt *uint64        `json:"expires_at,omitempty"`
}

type credentialRecordResponse struct {
	Hash      string         `json:"hash"`
	Issuer    domain.Account `json:"issuer"`
	Subject   domain.Account `json:"subject"`
	IssuedAt  uint64         `json:"issued_at"`
	ExpiresAt *uint64        `json:"expires_at,omitempty"`
	Revoked   bool           `json:"revoked"`
}

func credentialResponse(rec credential.Record) credentialRecordResponse {
	return credentialRecordResponse{
		Hash:      rec.Hash,
		Issuer:    rec.Issuer,
		Subject:   rec.Subject,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
		Revoked:   rec.Revoked,
	}
}

func (h *CredentialHandler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.credentials.Issue(ctx, middleware.GetCaller(ctx), req.Hash, req.Subject, req.ExpiresAt)
	if err != nil {
		h.logger.WarnContext(ctx, "issue credential failed",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, credentialResponse(rec))
}

type revokeRequest struct {
	Hash string `json:"hash"`
}

func (h *CredentialHandler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req revokeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.credentials.Revoke(ctx, middleware.GetCaller(ctx), req.Hash); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CredentialHandler) handleDetails(w http.ResponseWriter, r *http.Request) {
	rec, err := h.credentials.Details(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialResponse(rec))
}

func (h *CredentialHandler) handleIsValid(w http.ResponseWriter, r *http.Request) {
	valid, err := h.credentials.IsValid(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *CredentialHandler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.credentials.CredentialCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *CredentialHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.credentials.Events(ctx, domain.Account(r.URL.Query().Get("issuer")), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *CredentialHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pauseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.credentials.SetPaused(ctx, middleware.GetCaller(ctx), req.Paused); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CredentialHandler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req transferAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.credentials.TransferAdmin(ctx, middleware.GetCaller(ctx), req.NewAdmin); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
