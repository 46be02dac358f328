package off

import (
	"strconv"
	"strings"

	"github.com/nutrilog/backend/internal/domain"
)

// convertProduct maps an Open Food Facts record to the normalized result
// shape. Returns ok=false for items with no usable name or nutrition data.
func convertProduct(prod product) (domain.ProviderResult, bool) {
	name := bestName(prod)
	if name == "" {
		return domain.ProviderResult{}, false
	}

	per100g := extractPer100g(prod.Nutriments)
	if per100g.Empty() {
		return domain.ProviderResult{}, false
	}

	result := domain.ProviderResult{
		ID:       prod.Code,
		Name:     name,
		Brand:    firstBrand(prod.Brands),
		Per100g:  per100g,
		ImageURL: prod.ImageFrontSmall,
	}

	if de := strings.TrimSpace(prod.ProductNameDE); de != "" && de != name {
		result.NameLocalized = de
	}
	if grams, ok := coerceFloat(prod.ServingQuantity); ok && grams > 0 {
		result.ServingSizeGrams = grams
	}

	return result, true
}

// bestName picks a display name using the OFF fallback order:
// product_name, then product_name_de, then generic_name.
func bestName(prod product) string {
	if name := strings.TrimSpace(prod.ProductName); name != "" {
		return name
	}
	if name := strings.TrimSpace(prod.ProductNameDE); name != "" {
		return name
	}
	return strings.TrimSpace(prod.GenericName)
}

// firstBrand takes the first entry of OFF's comma-separated brands field
func firstBrand(brands string) string {
	if brands == "" {
		return ""
	}
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

// extractPer100g pulls the normalized nutrient set out of the loosely typed
// nutriments map. Energy prefers energy-kcal_100g with a kJ fallback;
// sodium_100g is reported in grams and converted to milligrams.
func extractPer100g(nutriments map[string]any) domain.Per100g {
	var per100g domain.Per100g

	if kcal, ok := nutrimentFloat(nutriments, "energy-kcal_100g"); ok {
		per100g.Kcal = domain.RoundKcal(kcal)
	} else if kj, ok := nutrimentFloat(nutriments, "energy-kj_100g"); ok {
		per100g.Kcal = domain.KJToKcal(kj)
	}
	if v, ok := nutrimentFloat(nutriments, "proteins_100g"); ok {
		per100g.ProteinG = domain.Round1(v)
	}
	if v, ok := nutrimentFloat(nutriments, "carbohydrates_100g"); ok {
		per100g.CarbsG = domain.Round1(v)
	}
	if v, ok := nutrimentFloat(nutriments, "fat_100g"); ok {
		per100g.FatG = domain.Round1(v)
	}
	if v, ok := nutrimentFloat(nutriments, "fiber_100g"); ok {
		rounded := domain.Round1(v)
		per100g.FiberG = &rounded
	}
	if v, ok := nutrimentFloat(nutriments, "sugars_100g"); ok {
		rounded := domain.Round1(v)
		per100g.SugarG = &rounded
	}
	if v, ok := nutrimentFloat(nutriments, "sodium_100g"); ok {
		rounded := domain.Round1(v * 1000)
		per100g.SodiumMg = &rounded
	}

	return per100g
}

// nutrimentFloat coerces a nutriments map value to a non-negative float64.
// OFF serves numbers and numeric strings interchangeably.
func nutrimentFloat(nutriments map[string]any, key string) (float64, bool) {
	raw, ok := nutriments[key]
	if !ok {
		return 0, false
	}
	f, ok := coerceFloat(raw)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}

func coerceFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
