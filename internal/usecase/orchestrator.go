package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nutrilog/backend/internal/domain"
)

// Orchestrator fans a query out to all supporting providers concurrently and
// joins their results into a per-source map. A provider that errors, times
// out, or panics contributes nothing; the search itself never fails because
// one source did.
type Orchestrator struct {
	overallTimeout time.Duration
}

// NewOrchestrator creates an orchestrator. overallTimeout bounds the whole
// fan-out; zero means no bound beyond the caller's context.
func NewOrchestrator(overallTimeout time.Duration) *Orchestrator {
	return &Orchestrator{overallTimeout: overallTimeout}
}

// Collect queries every Supports-passing provider in its own goroutine and
// returns whatever arrived before all providers finished or the overall
// deadline expired. Providers still running at the deadline are abandoned;
// their late results are discarded, not awaited.
func (o *Orchestrator) Collect(
	ctx context.Context,
	providers []domain.Provider,
	query string,
	limit int,
) map[domain.Source][]domain.ProviderResult {
	if o.overallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.overallTimeout)
		defer cancel()
	}

	var mu sync.Mutex
	collected := make(map[domain.Source][]domain.ProviderResult)

	var wg sync.WaitGroup
	for _, p := range providers {
		if p == nil || !p.Supports(query) {
			continue
		}

		wg.Add(1)
		go func(p domain.Provider) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[SEARCH] provider %s panicked: %v", p.Source(), r)
				}
			}()

			results, err := p.Search(ctx, query, limit)
			if err != nil {
				log.Printf("[SEARCH] provider %s failed: %v", p.Source(), err)
				return
			}
			if len(results) == 0 {
				return
			}

			mu.Lock()
			collected[p.Source()] = append(collected[p.Source()], results...)
			mu.Unlock()
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("[SEARCH] deadline reached for %q, proceeding with partial results", query)
	}

	// Snapshot under the lock so abandoned providers cannot mutate the map
	// the merge engine is about to read.
	mu.Lock()
	defer mu.Unlock()
	snapshot := make(map[domain.Source][]domain.ProviderResult, len(collected))
	for source, results := range collected {
		snapshot[source] = results
	}
	return snapshot
}
