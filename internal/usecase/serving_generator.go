package usecase

import (
	"fmt"
	"strings"

	"github.com/nutrilog/backend/internal/domain"
)

// foodCategory groups foods that share realistic portion shapes
type foodCategory int

const (
	categoryGeneric foodCategory = iota
	categoryEgg
	categoryBread
	categoryBeverage
	categoryFruit
	categoryVegetable
)

// Classification keyword lists, English and German. Checked in fixed priority
// order (egg, bread, beverage, fruit, vegetable) so a name matching several
// categories resolves deterministically.
var (
	eggKeywords = []string{"egg", "omelet", "omelett", "eier", "ei"}

	breadKeywords = []string{
		"bread", "toast", "bagel", "pita", "baguette",
		"brot", "brötchen", "broetchen", "semmel",
	}

	beverageKeywords = []string{
		"milk", "juice", "drink", "soda", "cola", "coffee", "tea", "water",
		"smoothie", "latte", "beer",
		"milch", "saft", "getränk", "getraenk", "kaffee", "tee", "wasser", "bier",
	}

	fruitKeywords = []string{
		"apple", "banana", "orange", "berry", "grape", "mango", "peach",
		"pear", "kiwi", "melon", "fruit",
		"apfel", "banane", "beere", "traube", "pfirsich", "birne", "melone", "obst",
	}

	vegetableKeywords = []string{
		"tomato", "carrot", "cucumber", "broccoli", "spinach", "salad",
		"zucchini", "onion", "potato", "pepper", "vegetable",
		"tomate", "karotte", "möhre", "gurke", "brokkoli", "spinat", "salat",
		"zwiebel", "kartoffel", "paprika", "gemüse", "gemuese",
	}
)

// commonWeights are appended to every food's serving list when not already
// present as an option
var commonWeights = []float64{50, 150, 200, 250}

// ServingGenerator derives a small, food-type-aware menu of serving sizes
// from a per-100g nutrition record and the food's name
type ServingGenerator struct{}

// NewServingGenerator creates a serving generator
func NewServingGenerator() *ServingGenerator {
	return &ServingGenerator{}
}

// Generate returns the serving options for a food and the id of the default
// option. The list always contains a 100g baseline, gram values are unique
// within the list, and every option's nutrition is the per-100g record scaled
// linearly to its weight.
func (g *ServingGenerator) Generate(
	name string,
	per100g domain.Per100g,
	servingSizeGrams float64,
) ([]domain.ServingOption, string) {
	options := []domain.ServingOption{{
		ID:        "100g",
		Label:     "100g",
		Grams:     100,
		Nutrition: per100g.ScaledTo(100),
	}}
	defaultID := "100g"

	add := func(id, label string, grams float64) bool {
		for _, opt := range options {
			if opt.Grams == grams {
				return false
			}
		}
		options = append(options, domain.ServingOption{
			ID:        id,
			Label:     label,
			Grams:     grams,
			Nutrition: per100g.ScaledTo(grams),
		})
		return true
	}

	lowerName := strings.ToLower(name)

	switch classify(lowerName) {
	case categoryEgg:
		add("egg_small", "1 egg small (50g)", 50)
		add("egg_medium", "1 egg medium (58g)", 58)
		add("egg_large", "1 egg large (63g)", 63)
		defaultID = "egg_medium"

	case categoryBread:
		add("bread_slice", "1 slice (30g)", 30)
		switch {
		case containsKeyword(lowerName, "bagel"):
			add("bread_two_slices", "2 slices (60g)", 60)
			add("bread_bagel", "1 bagel (90g)", 90)
			defaultID = "bread_bagel"
		case containsKeyword(lowerName, "pita"):
			// the pita portion takes the 60g slot instead of "2 slices"
			add("bread_pita", "1 pita (60g)", 60)
			defaultID = "bread_pita"
		default:
			add("bread_two_slices", "2 slices (60g)", 60)
			defaultID = "bread_slice"
		}

	case categoryBeverage:
		// ml treated as g for beverages
		add("cup", "1 cup (240ml)", 240)
		add("glass", "1 glass (300ml)", 300)
		add("bottle", "1 bottle (500ml)", 500)
		defaultID = "cup"

	case categoryFruit:
		add("fruit_small", "1 small (80g)", 80)
		add("fruit_medium", "1 medium (120g)", 120)
		add("fruit_large", "1 large (180g)", 180)
		defaultID = "fruit_medium"

	case categoryVegetable:
		add("veg_small", "1 small (80g)", 80)
		add("veg_medium", "1 medium (150g)", 150)
		add("veg_large", "1 large (200g)", 200)
		defaultID = "veg_medium"

	default:
		if servingSizeGrams > 0 && servingSizeGrams != 100 {
			label := fmt.Sprintf("1 serving (%sg)", formatGrams(servingSizeGrams))
			if add("serving", label, servingSizeGrams) &&
				servingSizeGrams >= 50 && servingSizeGrams <= 300 {
				defaultID = "serving"
			}
		}
	}

	for _, grams := range commonWeights {
		id := fmt.Sprintf("%sg", formatGrams(grams))
		add(id, id, grams)
	}

	for i := range options {
		options[i].IsDefault = options[i].ID == defaultID
	}

	return options, defaultID
}

// classify maps a lowercased food name to its portion category. The first
// category with a keyword hit wins.
func classify(lowerName string) foodCategory {
	checks := []struct {
		category foodCategory
		keywords []string
	}{
		{categoryEgg, eggKeywords},
		{categoryBread, breadKeywords},
		{categoryBeverage, beverageKeywords},
		{categoryFruit, fruitKeywords},
		{categoryVegetable, vegetableKeywords},
	}

	for _, check := range checks {
		for _, keyword := range check.keywords {
			if containsKeyword(lowerName, keyword) {
				return check.category
			}
		}
	}

	return categoryGeneric
}

// containsKeyword matches a keyword within a lowercased name. Keywords of one
// or two characters ("ei") match whole words only; anything substring-matching
// "ei" would swallow half the German food vocabulary.
func containsKeyword(lowerName, keyword string) bool {
	if len(keyword) > 2 {
		return strings.Contains(lowerName, keyword)
	}
	for _, word := range strings.FieldsFunc(lowerName, func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == '(' || r == ')'
	}) {
		if word == keyword {
			return true
		}
	}
	return false
}

// formatGrams renders a gram value without a trailing ".0"
func formatGrams(grams float64) string {
	if grams == float64(int64(grams)) {
		return fmt.Sprintf("%d", int64(grams))
	}
	return fmt.Sprintf("%.1f", grams)
}
