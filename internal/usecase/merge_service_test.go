package usecase

import (
	"reflect"
	"testing"

	"github.com/nutrilog/backend/internal/domain"
)

func newTestMergeService() *MergeService {
	return NewMergeService(NewServingGenerator())
}

func completePer100g() domain.Per100g {
	return domain.Per100g{Kcal: 52, ProteinG: 0.3, CarbsG: 14.0, FatG: 0.2}
}

func TestMergeAndRankEmpty(t *testing.T) {
	svc := newTestMergeService()

	t.Run("nil map yields empty list", func(t *testing.T) {
		results := svc.MergeAndRank("apple", nil)
		if results == nil || len(results) != 0 {
			t.Errorf("results = %v, want empty non-nil slice", results)
		}
	})

	t.Run("map of empty lists yields empty list", func(t *testing.T) {
		bySource := map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA: {},
		}
		if results := svc.MergeAndRank("apple", bySource); len(results) != 0 {
			t.Errorf("got %d results, want 0", len(results))
		}
	})
}

func TestDeduplication(t *testing.T) {
	svc := newTestMergeService()

	t.Run("same name and brand collapse to one result regardless of order", func(t *testing.T) {
		a := domain.ProviderResult{ID: "1", Name: "Apple", Brand: "Granny Smith", Per100g: completePer100g()}
		b := domain.ProviderResult{ID: "2", Name: "  apple ", Brand: "GRANNY SMITH", Per100g: completePer100g()}

		forward := svc.MergeAndRank("apple", map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA:          {a},
			domain.SourceOpenFoodFacts: {b},
		})
		reversed := svc.MergeAndRank("apple", map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA:          {b},
			domain.SourceOpenFoodFacts: {a},
		})

		if len(forward) != 1 || len(reversed) != 1 {
			t.Fatalf("got %d and %d results, want 1 and 1", len(forward), len(reversed))
		}
	})

	t.Run("different brands stay separate", func(t *testing.T) {
		results := svc.MergeAndRank("apple", map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA: {
				{ID: "1", Name: "Apple", Brand: "Granny Smith", Per100g: completePer100g()},
				{ID: "2", Name: "Apple", Per100g: completePer100g()},
			},
		})
		if len(results) != 2 {
			t.Errorf("got %d results, want 2", len(results))
		}
	})

	t.Run("complete nutrition beats incomplete regardless of image or source", func(t *testing.T) {
		complete := domain.ProviderResult{ID: "complete", Name: "Apple", Per100g: completePer100g()}
		partial := domain.ProviderResult{
			ID:       "partial",
			Name:     "Apple",
			Per100g:  domain.Per100g{Kcal: 52, CarbsG: 14.0, FatG: 0.2}, // protein missing
			ImageURL: "https://img.example/apple.jpg",
		}

		// The incomplete item has the image and the higher-priority source
		results := svc.MergeAndRank("apple", map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA:          {partial},
			domain.SourceOpenFoodFacts: {complete},
		})

		if len(results) != 1 {
			t.Fatalf("got %d results, want 1", len(results))
		}
		if results[0].ID != "openfoodfacts:complete" {
			t.Errorf("winner = %q, want the complete item", results[0].ID)
		}
		if results[0].IsPartial {
			t.Error("IsPartial = true for a complete winner")
		}
	})

	t.Run("image breaks completeness ties", func(t *testing.T) {
		withImage := domain.ProviderResult{ID: "img", Name: "Apple", Per100g: completePer100g(), ImageURL: "https://img.example/a.jpg"}
		without := domain.ProviderResult{ID: "noimg", Name: "Apple", Per100g: completePer100g()}

		results := svc.MergeAndRank("apple", map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA:          {without},
			domain.SourceOpenFoodFacts: {withImage},
		})
		if results[0].ID != "openfoodfacts:img" {
			t.Errorf("winner = %q, want the item with an image", results[0].ID)
		}
	})

	t.Run("source priority breaks remaining ties", func(t *testing.T) {
		usda := domain.ProviderResult{ID: "u", Name: "Apple", Per100g: completePer100g()}
		off := domain.ProviderResult{ID: "o", Name: "Apple", Per100g: completePer100g()}

		results := svc.MergeAndRank("apple", map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA:          {usda},
			domain.SourceOpenFoodFacts: {off},
		})
		if results[0].Source != domain.SourceUSDA {
			t.Errorf("winner source = %q, want usda", results[0].Source)
		}
	})
}

func TestRelevanceScoring(t *testing.T) {
	svc := newTestMergeService()

	t.Run("exact beats prefix beats substring beats unrelated", func(t *testing.T) {
		results := svc.MergeAndRank("milk", map[domain.Source][]domain.ProviderResult{
			domain.SourceOpenFoodFacts: {
				{ID: "1", Name: "Oat cereal", Per100g: completePer100g()},
				{ID: "2", Name: "almond milk drink", Per100g: completePer100g()},
				{ID: "3", Name: "milk", Per100g: completePer100g()},
				{ID: "4", Name: "milkshake vanilla", Per100g: completePer100g()},
			},
		})

		order := make([]string, len(results))
		for i, r := range results {
			order[i] = r.Name
		}
		want := []string{"milk", "milkshake vanilla", "almond milk drink", "Oat cereal"}
		if !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
	})

	t.Run("localized name counts toward matching", func(t *testing.T) {
		results := svc.MergeAndRank("apfel", map[domain.Source][]domain.ProviderResult{
			domain.SourceOpenFoodFacts: {
				{ID: "1", Name: "Pear", Per100g: completePer100g()},
				{ID: "2", Name: "Apple", NameLocalized: "Apfel", Per100g: completePer100g()},
			},
		})
		if results[0].Name != "Apple" {
			t.Errorf("top result = %q, want the localized exact match", results[0].Name)
		}
	})

	t.Run("brand contributes presence and substring bonuses", func(t *testing.T) {
		results := svc.MergeAndRank("granny", map[domain.Source][]domain.ProviderResult{
			domain.SourceOpenFoodFacts: {
				{ID: "plain", Name: "Apple", Per100g: completePer100g()},
				{ID: "branded", Name: "Apple", Brand: "Granny Smith", Per100g: completePer100g()},
			},
		})
		if results[0].ID != "openfoodfacts:branded" {
			t.Errorf("top result = %q, want the branded item", results[0].ID)
		}
	})

	t.Run("source bonus separates otherwise equal names", func(t *testing.T) {
		bySource := map[domain.Source][]domain.ProviderResult{
			domain.SourceUSDA:          {{ID: "a", Name: "Rice pudding", Per100g: completePer100g()}},
			domain.SourceOpenFoodFacts: {{ID: "b", Name: "Rice porridge", Per100g: completePer100g()}},
		}
		// USDA's source bonus (8) exceeds OFF's (5); both names score identically otherwise
		results := svc.MergeAndRank("rice", bySource)
		if results[0].Source != domain.SourceUSDA {
			t.Errorf("top source = %q, want usda", results[0].Source)
		}
	})
}

func TestMergeAndRankDeterminism(t *testing.T) {
	svc := newTestMergeService()

	bySource := map[domain.Source][]domain.ProviderResult{
		domain.SourceUSDA: {
			{ID: "1", Name: "Apple", Per100g: completePer100g()},
			{ID: "2", Name: "Apple pie", Per100g: domain.Per100g{Kcal: 300, CarbsG: 40, FatG: 12}},
		},
		domain.SourceOpenFoodFacts: {
			{ID: "3", Name: "apple", Brand: "Orchard", Per100g: completePer100g(), ImageURL: "https://img.example/x.jpg"},
		},
		domain.SourceEdamam: {
			{ID: "4", Name: "Apple juice", Per100g: completePer100g()},
		},
	}

	first := svc.MergeAndRank("apple", bySource)
	second := svc.MergeAndRank("apple", bySource)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different output")
	}
}

// End-to-end duplicate scenario: two providers both return "Apple"; the
// complete entry must win despite lacking an image, and the survivor carries
// fruit servings with a medium default.
func TestMergeAndRankAppleScenario(t *testing.T) {
	svc := newTestMergeService()

	bySource := map[domain.Source][]domain.ProviderResult{
		domain.SourceUSDA: {{
			ID:      "gs",
			Name:    "Apple",
			Brand:   "",
			Per100g: completePer100g(),
		}},
		domain.SourceOpenFoodFacts: {{
			ID:       "img",
			Name:     "Apple",
			Per100g:  domain.Per100g{Kcal: 52, CarbsG: 14.0, FatG: 0.2},
			ImageURL: "https://img.example/apple.jpg",
		}},
	}

	results := svc.MergeAndRank("apple", bySource)

	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(results))
	}
	r := results[0]
	if r.IsPartial {
		t.Error("IsPartial = true, want false")
	}
	if r.DefaultServing != "fruit_medium" {
		t.Errorf("DefaultServing = %q, want fruit_medium", r.DefaultServing)
	}

	var has100g, hasSmall, hasMedium, hasLarge bool
	for _, s := range r.Servings {
		switch s.ID {
		case "100g":
			has100g = true
		case "fruit_small":
			hasSmall = true
		case "fruit_medium":
			hasMedium = true
		case "fruit_large":
			hasLarge = true
		}
	}
	if !has100g || !hasSmall || !hasMedium || !hasLarge {
		t.Errorf("servings missing expected entries: 100g=%v small=%v medium=%v large=%v",
			has100g, hasSmall, hasMedium, hasLarge)
	}
}

func TestDedupKey(t *testing.T) {
	cases := []struct {
		result domain.ProviderResult
		want   string
	}{
		{domain.ProviderResult{Name: "  Whole   Milk "}, "whole milk"},
		{domain.ProviderResult{Name: "Milk", Brand: " Dairyco "}, "milk|dairyco"},
		{domain.ProviderResult{Name: "MILK", Brand: ""}, "milk"},
	}
	for _, tc := range cases {
		if got := dedupKey(tc.result); got != tc.want {
			t.Errorf("dedupKey(%q/%q) = %q, want %q", tc.result.Name, tc.result.Brand, got, tc.want)
		}
	}
}
