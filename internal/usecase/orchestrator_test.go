package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/nutrilog/backend/internal/domain"
)

// fakeProvider is a configurable in-memory provider for orchestrator tests
type fakeProvider struct {
	source   domain.Source
	supports bool
	results  []domain.ProviderResult
	err      error
	delay    time.Duration
	panics   bool
}

func (f *fakeProvider) Source() domain.Source { return f.source }

func (f *fakeProvider) Supports(query string) bool { return f.supports }

func (f *fakeProvider) Search(ctx context.Context, query string, limit int) ([]domain.ProviderResult, error) {
	if f.panics {
		panic("provider blew up")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func someResult(id string) domain.ProviderResult {
	return domain.ProviderResult{ID: id, Name: "Food " + id, Per100g: domain.Per100g{Kcal: 100, ProteinG: 1, CarbsG: 1, FatG: 1}}
}

func TestCollect(t *testing.T) {
	ctx := context.Background()

	t.Run("gathers results from all supporting providers", func(t *testing.T) {
		o := NewOrchestrator(0)
		providers := []domain.Provider{
			&fakeProvider{source: domain.SourceUSDA, supports: true, results: []domain.ProviderResult{someResult("a")}},
			&fakeProvider{source: domain.SourceOpenFoodFacts, supports: true, results: []domain.ProviderResult{someResult("b"), someResult("c")}},
		}

		collected := o.Collect(ctx, providers, "apple", 10)

		if len(collected[domain.SourceUSDA]) != 1 {
			t.Errorf("usda results = %d, want 1", len(collected[domain.SourceUSDA]))
		}
		if len(collected[domain.SourceOpenFoodFacts]) != 2 {
			t.Errorf("off results = %d, want 2", len(collected[domain.SourceOpenFoodFacts]))
		}
	})

	t.Run("skips providers that do not support the query", func(t *testing.T) {
		o := NewOrchestrator(0)
		providers := []domain.Provider{
			&fakeProvider{source: domain.SourceUSDA, supports: false, results: []domain.ProviderResult{someResult("a")}},
		}

		if collected := o.Collect(ctx, providers, "x", 10); len(collected) != 0 {
			t.Errorf("collected = %v, want empty", collected)
		}
	})

	t.Run("survives provider errors and panics", func(t *testing.T) {
		o := NewOrchestrator(0)
		providers := []domain.Provider{
			&fakeProvider{source: domain.SourceUSDA, supports: true, err: context.DeadlineExceeded},
			&fakeProvider{source: domain.SourceEdamam, supports: true, panics: true},
			&fakeProvider{source: domain.SourceOpenFoodFacts, supports: true, results: []domain.ProviderResult{someResult("ok")}},
		}

		collected := o.Collect(ctx, providers, "apple", 10)

		if len(collected) != 1 {
			t.Fatalf("collected from %d sources, want 1", len(collected))
		}
		if len(collected[domain.SourceOpenFoodFacts]) != 1 {
			t.Error("surviving provider's results were lost")
		}
	})

	t.Run("two failing providers still leave the third's results", func(t *testing.T) {
		o := NewOrchestrator(0)
		providers := []domain.Provider{
			&fakeProvider{source: domain.SourceUSDA, supports: true},
			&fakeProvider{source: domain.SourceEdamam, supports: true},
			&fakeProvider{source: domain.SourceOpenFoodFacts, supports: true, results: []domain.ProviderResult{
				someResult("1"), someResult("2"), someResult("3"),
			}},
		}

		collected := o.Collect(ctx, providers, "apple", 10)
		if len(collected[domain.SourceOpenFoodFacts]) != 3 {
			t.Errorf("off results = %d, want 3", len(collected[domain.SourceOpenFoodFacts]))
		}
	})

	t.Run("abandons providers still running at the deadline", func(t *testing.T) {
		o := NewOrchestrator(50 * time.Millisecond)
		providers := []domain.Provider{
			&fakeProvider{source: domain.SourceUSDA, supports: true, delay: 5 * time.Second, results: []domain.ProviderResult{someResult("slow")}},
			&fakeProvider{source: domain.SourceOpenFoodFacts, supports: true, results: []domain.ProviderResult{someResult("fast")}},
		}

		start := time.Now()
		collected := o.Collect(ctx, providers, "apple", 10)
		elapsed := time.Since(start)

		if elapsed > time.Second {
			t.Errorf("Collect took %v, should have abandoned the slow provider", elapsed)
		}
		if len(collected[domain.SourceUSDA]) != 0 {
			t.Error("slow provider's results should have been discarded")
		}
		if len(collected[domain.SourceOpenFoodFacts]) != 1 {
			t.Error("fast provider's results should have been kept")
		}
	})

	t.Run("ignores nil providers", func(t *testing.T) {
		o := NewOrchestrator(0)
		providers := []domain.Provider{
			nil,
			&fakeProvider{source: domain.SourceUSDA, supports: true, results: []domain.ProviderResult{someResult("a")}},
		}

		collected := o.Collect(ctx, providers, "apple", 10)
		if len(collected[domain.SourceUSDA]) != 1 {
			t.Error("nil provider disturbed collection")
		}
	})
}
