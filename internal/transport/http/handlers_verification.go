package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustgraph/internal/platform/middleware"
	"trustgraph/internal/verification"
	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/audit"
)

// VerificationService is the surface of the verification hub the transport needs.
type VerificationService interface {
	SetTrustedIssuerContract(ctx context.Context, caller, issuer domain.Account) error
	RemoveTrustedIssuerContract(ctx context.Context, caller, issuer domain.Account) error
	IsTrustedIssuerContract(issuer domain.Account) bool
	SubmitProof(ctx context.Context, submitter domain.Account, proofHash, credentialHash string, verifier domain.Account) (verification.Record, error)
	MarkVerified(ctx context.Context, caller domain.Account, proofHash string) error
	Details(ctx context.Context, proofHash string) (verification.Record, error)
	ProofCount(ctx context.Context) (uint64, error)
	Events(ctx context.Context, account domain.Account, limit, offset uint64) ([]audit.Event, error)
	SetPaused(ctx context.Context, caller domain.Account, paused bool) error
	TransferAdmin(ctx context.Context, caller, newAdmin domain.Account) error
}

// VerificationHandler exposes the verification hub over HTTP.
type VerificationHandler struct {
	logger *slog.Logger
	proofs VerificationService
}

func NewVerificationHandler(svc VerificationService, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{logger: logger, proofs: svc}
}

func (h *VerificationHandler) Register(r chi.Router) {
	r.Route("/verification", func(r chi.Router) {
		r.Post("/trusted", h.handleTrustIssuer)
		r.Delete("/trusted/{issuer}", h.handleUntrustIssuer)
		r.Get("/trusted/{issuer}", h.handleTrustStatus)
		r.Post("/submit", h.handleSubmitProof)
		r.Post("/verify", h.handleMarkVerified)
		r.Get("/count", h.handleCount)
		r.Get("/events", h.handleEvents)
		r.Get("/{proofHash}", h.handleDetails)
		r.Post("/admin/pause", h.handlePause)
		r.Post("/admin/transfer", h.handleTransferAdmin)
	})
}

func (h *VerificationHandler) handleTrustIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req issuerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.proofs.SetTrustedIssuerContract(ctx, middleware.GetCaller(ctx), req.Issuer); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VerificationHandler) handleUntrustIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuer := domain.Account(chi.URLParam(r, "issuer"))
	if err := h.proofs.RemoveTrustedIssuerContract(ctx, middleware.GetCaller(ctx), issuer); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VerificationHandler) handleTrustStatus(w http.ResponseWriter, r *http.Request) {
	trusted := h.proofs.IsTrustedIssuerContract(domain.Account(chi.URLParam(r, "issuer")))
	writeJSON(w, http.StatusOK, map[string]bool{"trusted": trusted})
}

type submitProofRequest struct {
	ProofHash      string         `json:"proof_hash"`
	CredentialHash string         `json:"credential_hash"`
	Verifier       domain.Account `json:"verifier"`
}

type proofRecordResponse struct {
	ProofHash      string         `json:"proof_hash"`
	Verifier       domain.Account `json:"verifier"`
	Subject        domain.Account `json:"subject"`
	CredentialHash string         `json:"credential_hash"`
	SubmittedAt    uint64         `json:"submitted_at"`
	Verified       bool           `json:"verified"`
}

func proofResponse(rec verification.Record) proofRecordResponse {
	return proofRecordResponse{
		ProofHash:      rec.ProofHash,
		Verifier:       rec.Verifier,
		Subject:        rec.Subject,
		CredentialHash: rec.CredentialHash,
		SubmittedAt:    rec.SubmittedAt,
		Verified:       rec.Verified,
	}
}

func (h *VerificationHandler) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req submitProofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.proofs.SubmitProof(ctx, middleware.GetCaller(ctx), req.ProofHash, req.CredentialHash, req.Verifier)
	if err != nil {
		h.logger.WarnContext(ctx, "submit proof failed",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proofResponse(rec))
}

type markVerifiedRequest struct {
	ProofHash string `json:"proof_hash"`
}

func (h *VerificationHandler) handleMarkVerified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req markVerifiedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.proofs.MarkVerified(ctx, middleware.GetCaller(ctx), req.ProofHash); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VerificationHandler) handleDetails(w http.ResponseWriter, r *http.Request) {
	rec, err := h.proofs.Details(r.Context(), chi.URLParam(r, "proofHash"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proofResponse(rec))
}

func (h *VerificationHandler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.proofs.ProofCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *VerificationHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.proofs.Events(ctx, domain.Account(r.URL.Query().Get("account")), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *VerificationHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req pauseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.proofs.SetPaused(ctx, middleware.GetCaller(ctx), req.Paused); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VerificationHandler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req transferAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.proofs.TransferAdmin(ctx, middleware.GetCaller(ctx), req.NewAdmin); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
