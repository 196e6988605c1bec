package audit

import "context"

// Log is the append-only store behind one component's audit trail. Append
// assigns the next monotonic id; List applies the id-window pagination rule:
// it scans events whose id falls in [offset+1, offset+limit] and returns the
// ones matching the filter. Non-matching ids inside the window are silently
// skipped, so the result may be shorter than limit.
type Log interface {
	Append(ctx context.Context, event Event) (Event, error)
	List(ctx context.Context, filter Filter, limit, offset uint64) ([]Event, error)
	Count(ctx context.Context) (uint64, error)
}
