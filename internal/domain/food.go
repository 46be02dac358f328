package domain

import (
	"math"
	"time"
)

// Source identifies the external database a result came from
type Source string

const (
	SourceUSDA          Source = "usda"
	SourceOpenFoodFacts Source = "openfoodfacts"
	SourceEdamam        Source = "edamam"
	SourceHistory       Source = "history"
)

// Per100g holds nutrition facts normalized to a 100-gram basis.
// Pointer fields are optional: nil means "unknown", not zero.
type Per100g struct {
	Kcal     int      `json:"kcal"`
	ProteinG float64  `json:"protein_g"`
	CarbsG   float64  `json:"carbs_g"`
	FatG     float64  `json:"fat_g"`
	FiberG   *float64 `json:"fiber_g,omitempty"`
	SugarG   *float64 `json:"sugar_g,omitempty"`
	SodiumMg *float64 `json:"sodium_mg,omitempty"`
}

// Complete reports whether all four primary macros are present and nonzero
func (p Per100g) Complete() bool {
	return p.Kcal != 0 && p.ProteinG != 0 && p.CarbsG != 0 && p.FatG != 0
}

// Empty reports whether all four primary macros are exactly zero,
// which providers treat as "no usable nutrition data"
func (p Per100g) Empty() bool {
	return p.Kcal == 0 && p.ProteinG == 0 && p.CarbsG == 0 && p.FatG == 0
}

// ScaledTo returns the nutrition for a portion of the given gram weight,
// computed by strict linear scaling from the 100g basis.
// Rounding is fixed: kcal to the nearest integer, gram fields to 1 decimal.
func (p Per100g) ScaledTo(grams float64) Per100g {
	factor := grams / 100.0

	scaled := Per100g{
		Kcal:     RoundKcal(float64(p.Kcal) * factor),
		ProteinG: Round1(p.ProteinG * factor),
		CarbsG:   Round1(p.CarbsG * factor),
		FatG:     Round1(p.FatG * factor),
	}
	if p.FiberG != nil {
		v := Round1(*p.FiberG * factor)
		scaled.FiberG = &v
	}
	if p.SugarG != nil {
		v := Round1(*p.SugarG * factor)
		scaled.SugarG = &v
	}
	if p.SodiumMg != nil {
		v := Round1(*p.SodiumMg * factor)
		scaled.SodiumMg = &v
	}

	return scaled
}

// RoundKcal rounds an energy value to the nearest whole kcal
func RoundKcal(v float64) int {
	return int(math.Round(v))
}

// Round1 rounds a gram or milligram value to 1 decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// KJToKcal converts energy reported in kilojoules to kcal.
// Used when a source reports kJ only: kcal = round(kJ * 0.239).
func KJToKcal(kj float64) int {
	return int(math.Round(kj * 0.239))
}

// ProviderResult is one candidate food as reported by exactly one source.
// Providers build these fresh per search call; they are never mutated after.
type ProviderResult struct {
	ID               string
	Name             string
	NameLocalized    string
	Brand            string
	Per100g          Per100g
	ServingSizeGrams float64 // source-suggested default portion; 0 = unknown
	ImageURL         string
	LastUsed         *time.Time // set only by the user-history provider
}

// ServingOption is a named, fixed-gram portion with pre-scaled nutrition
type ServingOption struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Grams     float64 `json:"grams"`
	IsDefault bool    `json:"isDefault"`
	Nutrition Per100g `json:"nutrition"`
}

// FoodSearchResult is one deduplicated, scored, serving-enriched candidate
// returned to the caller. Servings always contains a 100g baseline entry and
// DefaultServing always refers to an id present in Servings.
type FoodSearchResult struct {
	ID             string          `json:"id"` // "source:providerID", unique within a response
	Source         Source          `json:"source"`
	Name           string          `json:"name"`
	NameLocalized  string          `json:"nameLocalized,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Per100g        Per100g         `json:"per100g"`
	Servings       []ServingOption `json:"servings"`
	DefaultServing string          `json:"defaultServing"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	IsPartial      bool            `json:"isPartial"`
	LastUsed       *time.Time      `json:"lastUsed,omitempty"`
}
