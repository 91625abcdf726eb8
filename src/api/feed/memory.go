package feed

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process fan-out used when no redis is configured
// (single instance deployments) and by tests. Slow subscribers drop
// events rather than block the publisher.
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan VoteEvent]struct{}
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[chan VoteEvent]struct{})}
}

func (f *MemoryFeed) Publish(_ context.Context, pollID string, ev VoteEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[pollID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, pollID string) (<-chan VoteEvent, error) {
	ch := make(chan VoteEvent, 16)
	f.mu.Lock()
	if f.subs[pollID] == nil {
		f.subs[pollID] = make(map[chan VoteEvent]struct{})
	}
	f.subs[pollID][ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs[pollID], ch)
		if len(f.subs[pollID]) == 0 {
			delete(f.subs, pollID)
		}
		f.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
