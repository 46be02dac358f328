package history

import (
	"context"
	"log"
	"strings"

	"github.com/nutrilog/backend/internal/domain"
)

const minQueryLength = 2

// Provider surfaces the user's own custom foods and recently logged meals as
// search candidates. It is constructed per request with the authenticated
// user id, which it trusts as-is.
type Provider struct {
	store  domain.MealLogStore
	userID string
}

// NewProvider creates a history provider scoped to one user
func NewProvider(store domain.MealLogStore, userID string) *Provider {
	return &Provider{
		store:  store,
		userID: userID,
	}
}

// Source returns the provider's source tag
func (p *Provider) Source() domain.Source {
	return domain.SourceHistory
}

// Supports requires both a usable query and an authenticated user
func (p *Provider) Supports(query string) bool {
	return len(query) >= minQueryLength && p.userID != ""
}

// Search merges matching custom foods and logged meals. Custom foods already
// carry per-100g values; logged meals are reverse-scaled from the portion as
// eaten. Store failures are logged and yield an empty result list.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.ProviderResult, error) {
	results := make([]domain.ProviderResult, 0, limit)
	seen := make(map[string]bool)

	customFoods, err := p.store.SearchCustomFoods(ctx, p.userID, query, limit)
	if err != nil {
		log.Printf("[HISTORY] custom food lookup failed for user %s: %v", p.userID, err)
	}
	for _, food := range customFoods {
		r, ok := convertCustomFood(food)
		if !ok {
			continue
		}
		key := nameKey(r.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, r)
		if len(results) >= limit {
			return results, nil
		}
	}

	meals, err := p.store.SearchLoggedMeals(ctx, p.userID, query, limit)
	if err != nil {
		log.Printf("[HISTORY] logged meal lookup failed for user %s: %v", p.userID, err)
	}
	for _, meal := range meals {
		r, ok := convertLoggedMeal(meal)
		if !ok {
			continue
		}
		key := nameKey(r.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, r)
		if len(results) >= limit {
			break
		}
	}

	return results, nil
}

// convertCustomFood maps a stored custom food to the normalized result shape
func convertCustomFood(food domain.CustomFood) (domain.ProviderResult, bool) {
	name := strings.TrimSpace(food.Name)
	if name == "" {
		return domain.ProviderResult{}, false
	}

	per100g := domain.Per100g{
		Kcal:     domain.RoundKcal(food.KcalPer100g),
		ProteinG: domain.Round1(food.ProteinG),
		CarbsG:   domain.Round1(food.CarbsG),
		FatG:     domain.Round1(food.FatG),
	}
	if per100g.Empty() {
		return domain.ProviderResult{}, false
	}

	return domain.ProviderResult{
		ID:               "custom:" + food.ID,
		Name:             name,
		Brand:            food.Brand,
		Per100g:          per100g,
		ServingSizeGrams: food.ServingGrams,
	}, true
}

// convertLoggedMeal reverse-scales a logged portion back to a 100g basis:
// factor = 100 / portion_grams, defaulting the portion to 100g when unknown.
func convertLoggedMeal(meal domain.LoggedMeal) (domain.ProviderResult, bool) {
	name := strings.TrimSpace(meal.Name)
	if name == "" {
		return domain.ProviderResult{}, false
	}

	portionGrams := meal.PortionGrams
	if portionGrams <= 0 {
		portionGrams = 100
	}
	factor := 100.0 / portionGrams

	per100g := domain.Per100g{
		Kcal:     domain.RoundKcal(meal.Kcal * factor),
		ProteinG: domain.Round1(meal.ProteinG * factor),
		CarbsG:   domain.Round1(meal.CarbsG * factor),
		FatG:     domain.Round1(meal.FatG * factor),
	}
	if per100g.Empty() {
		return domain.ProviderResult{}, false
	}

	loggedAt := meal.LoggedAt

	return domain.ProviderResult{
		ID:               "meal:" + meal.ID,
		Name:             name,
		Brand:            meal.Brand,
		Per100g:          per100g,
		ServingSizeGrams: portionGrams,
		LastUsed:         &loggedAt,
	}, true
}

// nameKey normalizes a name for in-provider deduplication
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
