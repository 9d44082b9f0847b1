package engine

import (
	"iter"
	"sort"
	"sync"
)

// Registry maps market identifiers to Market instances. Markets are never
// deleted in the engine's lifetime.
type Registry struct {
	markets map[string]*Market
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		markets: make(map[string]*Market),
	}
}

// GetOrCreate is idempotent: concurrent callers for the same id observe
// the same Market instance.
func (r *Registry) GetOrCreate(marketID string) (*Market, bool) {
	r.mu.RLock()
	if m, exists := r.markets[marketID]; exists {
		r.mu.RUnlock()
		return m, false
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// edge case: double-check after acquiring write lock
	if m, exists := r.markets[marketID]; exists {
		return m, false
	}

	m := NewMarket(marketID)
	r.markets[marketID] = m
	return m, true
}

func (r *Registry) Get(marketID string) (*Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.markets[marketID]
	if !exists {
		return nil, &NotFoundError{Resource: "market", ID: marketID}
	}
	return m, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markets)
}

// Markets yields display summaries in ascending market id order. Each
// summary is computed at yield time; the sequence is restartable, with
// every range re-reading the registry.
func (r *Registry) Markets() iter.Seq[MarketSummary] {
	return func(yield func(MarketSummary) bool) {
		r.mu.RLock()
		markets := make([]*Market, 0, len(r.markets))
		for _, m := range r.markets {
			markets = append(markets, m)
		}
		r.mu.RUnlock()

		sort.Slice(markets, func(i, j int) bool {
			return markets[i].ID < markets[j].ID
		})
		for _, m := range markets {
			if !yield(m.Summary()) {
				return
			}
		}
	}
}

// List collects Markets into a slice for callers that serialize the
// whole set at once.
func (r *Registry) List() []MarketSummary {
	summaries := make([]MarketSummary, 0, r.Len())
	for s := range r.Markets() {
		summaries = append(summaries, s)
	}
	return summaries
}
