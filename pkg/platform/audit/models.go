// Package audit provides the per-store append-only event trail. Each store
// owns one log; event ids are a monotonic per-log counter starting at 1 and
// are never reused, mutated, or deleted.
package audit

import (
	"trustgraph/pkg/domain"
)

// EventType labels what happened. Values are stable: they appear on the wire
// and in the Kafka mirror.
type EventType string

const (
	// Identity store events.
	EventRegistered  EventType = "register"
	EventUpdated     EventType = "update"
	EventDeactivated EventType = "deactivate"

	// Credential store events.
	EventIssuerAuthorized EventType = "authorize_issuer"
	EventIssuerRevoked    EventType = "revoke_issuer"
	EventIssued           EventType = "issue"
	EventRevoked          EventType = "revoke"

	// Verification store events.
	EventIssuerTrusted   EventType = "trust_issuer"
	EventIssuerUntrusted EventType = "untrust_issuer"
	EventSubmitted       EventType = "submit"
	EventVerified        EventType = "verify"

	// Access policy store events.
	EventPolicySet EventType = "set_policy"

	// Administrative events, shared by all stores.
	EventPausedSet        EventType = "set_paused"
	EventAdminTransferred EventType = "transfer_admin"
)

// Event is one audit record. Actor is the account the event is attributed to
// (subject, issuer, or verifier depending on the store); EntityKey names the
// record the event touched (identifier, credential hash, proof hash, or
// credential type for policy events).
type Event struct {
	ID        uint64
	Actor     domain.Account
	EntityKey string
	Type      EventType
	Timestamp uint64
}

// Filter selects events on a paginated read. Zero-valued fields match
// everything; a read always filters by the requesting key per the external
// interface contract.
type Filter struct {
	Actor     domain.Account
	EntityKey string
}

// Matches reports whether the event satisfies the filter.
func (f Filter) Matches(e Event) bool {
	if f.Actor != domain.ZeroAccount && e.Actor != f.Actor {
		return false
	}
	if f.EntityKey != "" && e.EntityKey != f.EntityKey {
		return false
	}
	return true
}
