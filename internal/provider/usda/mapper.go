package usda

import (
	"strconv"
	"strings"

	"github.com/nutrilog/backend/internal/domain"
)

// USDA nutrient IDs for the fields we normalize
const (
	nutrientIDEnergy       = 1008 // kcal
	nutrientIDProtein      = 1003 // g
	nutrientIDCarbohydrate = 1005 // g
	nutrientIDTotalFat     = 1004 // g
	nutrientIDFiber        = 1079 // g
	nutrientIDSugar        = 2000 // g
	nutrientIDSodium       = 1093 // mg
)

// convertFood maps a FoodData Central record to the normalized result shape.
// Returns ok=false for items with no name or no usable nutrition data.
// USDA omits nutrients it has no value for, so a missing macro is
// indistinguishable from a true zero here.
func convertFood(f food) (domain.ProviderResult, bool) {
	name := strings.TrimSpace(f.Description)
	if name == "" {
		return domain.ProviderResult{}, false
	}

	per100g := extractPer100g(f.Nutrients)
	if per100g.Empty() {
		return domain.ProviderResult{}, false
	}

	return domain.ProviderResult{
		ID:      strconv.FormatInt(f.FdcID, 10),
		Name:    name,
		Brand:   strings.TrimSpace(f.BrandOwner),
		Per100g: per100g,
	}, true
}

// extractPer100g pulls the normalized nutrient set out of a USDA nutrient
// list. FoodData Central reports values per 100g already; energy is kcal for
// the data types we request, with a KJ fallback for the odd record that only
// carries kilojoules.
func extractPer100g(nutrients []nutrient) domain.Per100g {
	var per100g domain.Per100g
	var kjEnergy float64

	for _, n := range nutrients {
		switch n.NutrientID {
		case nutrientIDEnergy:
			if strings.EqualFold(n.UnitName, "kJ") {
				kjEnergy = n.Value
			} else {
				per100g.Kcal = domain.RoundKcal(n.Value)
			}
		case nutrientIDProtein:
			per100g.ProteinG = domain.Round1(n.Value)
		case nutrientIDCarbohydrate:
			per100g.CarbsG = domain.Round1(n.Value)
		case nutrientIDTotalFat:
			per100g.FatG = domain.Round1(n.Value)
		case nutrientIDFiber:
			v := domain.Round1(n.Value)
			per100g.FiberG = &v
		case nutrientIDSugar:
			v := domain.Round1(n.Value)
			per100g.SugarG = &v
		case nutrientIDSodium:
			v := domain.Round1(n.Value)
			per100g.SodiumMg = &v
		}
	}

	if per100g.Kcal == 0 && kjEnergy > 0 {
		per100g.Kcal = domain.KJToKcal(kjEnergy)
	}

	return per100g
}
