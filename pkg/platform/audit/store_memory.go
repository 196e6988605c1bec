package audit

import (
	"context"
	"sync"
)

// InMemoryLog keeps the trail in process. Events are held in append order so
// the id of the event at index i is always i+1, which makes the pagination
// window a plain slice bound.
type InMemoryLog struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

func (l *InMemoryLog) Append(_ context.Context, event Event) (Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	event.ID = uint64(len(l.events)) + 1
	l.events = append(l.events, event)
	return event, nil
}

func (l *InMemoryLog) List(_ context.Context, filter Filter, limit, offset uint64) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Event{}
	if limit == 0 {
		return out, nil
	}
	total := uint64(len(l.events))
	if offset >= total {
		return out, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	for _, e := range l.events[offset:end] {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *InMemoryLog) Count(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.events)), nil
}
