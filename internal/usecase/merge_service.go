package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nutrilog/backend/internal/domain"
)

// Relevance score weights. Policy constants carried over from the reference
// ranking behavior; retune freely but keep the relative ordering
// exact > prefix > substring > brand > completeness > image > source.
const (
	scoreExactMatch        = 100
	scorePrefixMatch       = 50
	scoreNameContains      = 25
	scoreLocalizedContains = 20
	scoreBrandContains     = 15
	scoreCompleteNutrition = 10
	scoreBrandPresent      = 5
	scoreHasImage          = 3
)

// sourceScoreBonus reflects per-source trust and freshness, independent of
// the dedup tie-break ranks
var sourceScoreBonus = map[domain.Source]int{
	domain.SourceUSDA:          8,
	domain.SourceHistory:       7,
	domain.SourceEdamam:        6,
	domain.SourceOpenFoodFacts: 5,
}

// sourcePriority is the dedup tie-break rank, highest wins. Total and stable
// across runs.
var sourcePriority = map[domain.Source]int{
	domain.SourceUSDA:          4,
	domain.SourceHistory:       3,
	domain.SourceEdamam:        2,
	domain.SourceOpenFoodFacts: 1,
}

// flattenOrder fixes the iteration order over the per-source map so that
// identical inputs always produce identical output, regardless of which
// provider finished first
var flattenOrder = []domain.Source{
	domain.SourceUSDA,
	domain.SourceHistory,
	domain.SourceEdamam,
	domain.SourceOpenFoodFacts,
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// taggedResult pairs a provider result with the source that produced it
type taggedResult struct {
	source domain.Source
	result domain.ProviderResult
}

// MergeService deduplicates, scores, and ranks the combined provider output
type MergeService struct {
	servings *ServingGenerator
}

// NewMergeService creates a merge service
func NewMergeService(servings *ServingGenerator) *MergeService {
	return &MergeService{servings: servings}
}

// MergeAndRank turns the raw per-source result map into the final ordered
// result list: flatten and tag, deduplicate, score against the query, sort
// descending, then attach serving options. An empty input yields an empty
// (never nil-error) output.
func (m *MergeService) MergeAndRank(
	query string,
	bySource map[domain.Source][]domain.ProviderResult,
) []domain.FoodSearchResult {
	flat := flatten(bySource)
	if len(flat) == 0 {
		return []domain.FoodSearchResult{}
	}

	survivors := deduplicate(flat)

	normalizedQuery := strings.ToLower(strings.TrimSpace(query))
	scores := make([]int, len(survivors))
	for i, item := range survivors {
		scores[i] = relevanceScore(normalizedQuery, item)
	}

	order := make([]int, len(survivors))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]domain.FoodSearchResult, 0, len(survivors))
	for _, idx := range order {
		results = append(results, m.buildResult(survivors[idx]))
	}

	return results
}

// flatten concatenates the per-source lists into one tagged list in a fixed
// source order
func flatten(bySource map[domain.Source][]domain.ProviderResult) []taggedResult {
	var flat []taggedResult
	for _, source := range flattenOrder {
		for _, result := range bySource[source] {
			flat = append(flat, taggedResult{source: source, result: result})
		}
	}
	return flat
}

// deduplicate groups items by normalized name|brand key and keeps exactly one
// winner per group. The loser is discarded whole, never merged field-by-field.
func deduplicate(flat []taggedResult) []taggedResult {
	winners := make(map[string]int) // dedup key -> index into survivors
	var survivors []taggedResult

	for _, item := range flat {
		key := dedupKey(item.result)
		idx, exists := winners[key]
		if !exists {
			winners[key] = len(survivors)
			survivors = append(survivors, item)
			continue
		}
		if beats(item, survivors[idx]) {
			survivors[idx] = item
		}
	}

	return survivors
}

// dedupKey builds the normalized grouping key: collapsed lowercase name,
// plus "|brand" when a brand is present
func dedupKey(result domain.ProviderResult) string {
	name := normalizeName(result.Name)
	brand := strings.ToLower(strings.TrimSpace(result.Brand))
	if brand == "" {
		return name
	}
	return name + "|" + brand
}

// normalizeName lowercases, trims, and collapses internal whitespace
func normalizeName(name string) string {
	return whitespaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
}

// beats reports whether the challenger should replace the current winner of
// its duplicate group. Precedence: complete nutrition, then image presence,
// then source priority. First rule that discriminates wins; a full tie keeps
// the incumbent.
func beats(challenger, incumbent taggedResult) bool {
	challengerComplete := challenger.result.Per100g.Complete()
	incumbentComplete := incumbent.result.Per100g.Complete()
	if challengerComplete != incumbentComplete {
		return challengerComplete
	}

	challengerImage := challenger.result.ImageURL != ""
	incumbentImage := incumbent.result.ImageURL != ""
	if challengerImage != incumbentImage {
		return challengerImage
	}

	return sourcePriority[challenger.source] > sourcePriority[incumbent.source]
}

// relevanceScore computes the additive relevance of one surviving item
// against the lowercased, trimmed query. All checks are independent
// additions.
func relevanceScore(query string, item taggedResult) int {
	name := strings.ToLower(strings.TrimSpace(item.result.Name))
	localized := strings.ToLower(strings.TrimSpace(item.result.NameLocalized))
	brand := strings.ToLower(strings.TrimSpace(item.result.Brand))

	score := 0

	exact := name == query || (localized != "" && localized == query)
	if exact {
		score += scoreExactMatch
	} else if strings.HasPrefix(name, query) || (localized != "" && strings.HasPrefix(localized, query)) {
		score += scorePrefixMatch
	}

	if strings.Contains(name, query) {
		score += scoreNameContains
	}
	if localized != "" && strings.Contains(localized, query) {
		score += scoreLocalizedContains
	}

	if brand != "" {
		score += scoreBrandPresent
		if strings.Contains(brand, query) {
			score += scoreBrandContains
		}
	}

	if item.result.Per100g.Complete() {
		score += scoreCompleteNutrition
	}
	if item.result.ImageURL != "" {
		score += scoreHasImage
	}

	score += sourceScoreBonus[item.source]

	return score
}

// buildResult packages one surviving item into the engine's output unit,
// running the serving generator on its per-100g record
func (m *MergeService) buildResult(item taggedResult) domain.FoodSearchResult {
	servings, defaultServing := m.servings.Generate(
		item.result.Name,
		item.result.Per100g,
		item.result.ServingSizeGrams,
	)

	return domain.FoodSearchResult{
		ID:             fmt.Sprintf("%s:%s", item.source, item.result.ID),
		Source:         item.source,
		Name:           item.result.Name,
		NameLocalized:  item.result.NameLocalized,
		Brand:          item.result.Brand,
		Per100g:        item.result.Per100g,
		Servings:       servings,
		DefaultServing: defaultServing,
		ImageURL:       item.result.ImageURL,
		IsPartial:      !item.result.Per100g.Complete(),
		LastUsed:       item.result.LastUsed,
	}
}
