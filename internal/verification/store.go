package verification

import (
	"context"
)

// Store persists verification records. proofHash is unique and permanent:
// once present it is never deleted and never resubmittable.
//
// Sentinel contract: ErrConflict on a consumed proof hash, ErrNotFound when
// absent, ErrInvalidState when the proof already made its single transition.
type Store interface {
	Create(ctx context.Context, record Record) error
	Find(ctx context.Context, proofHash string) (Record, error)
	// MarkVerified flips Verified exactly once; a second call fails.
	MarkVerified(ctx context.Context, proofHash string) error
	Count(ctx context.Context) (uint64, error)
}
