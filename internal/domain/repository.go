package domain

import (
	"context"
	"time"
)

// Provider is the capability interface every external food source implements.
//
// Supports is a fast local check with no I/O, used to skip providers that
// cannot usefully answer a query. Search performs the actual lookup; ordinary
// failure modes (network error, non-2xx, decode failure, timeout, source-level
// "no results") must never surface as an error, only as an empty slice with
// diagnostics routed to logging. The returned error is reserved for programmer
// errors and context cancellation.
type Provider interface {
	Source() Source
	Supports(query string) bool
	Search(ctx context.Context, query string, limit int) ([]ProviderResult, error)
}

// SearchCache caches final search responses keyed by normalized query
type SearchCache interface {
	Get(ctx context.Context, key string) ([]FoodSearchResult, error)
	Set(ctx context.Context, key string, results []FoodSearchResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CustomFood is a user-defined food persisted in the meal-log store,
// with nutrition already on a per-100g basis
type CustomFood struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	KcalPer100g  float64   `json:"kcalPer100g"`
	ProteinG     float64   `json:"proteinG"`
	CarbsG       float64   `json:"carbsG"`
	FatG         float64   `json:"fatG"`
	ServingGrams float64   `json:"servingGrams,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LoggedMeal is a previously logged portion; nutrition fields are for the
// portion as eaten, not per 100g
type LoggedMeal struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	PortionGrams float64   `json:"portionGrams"`
	Kcal         float64   `json:"kcal"`
	ProteinG     float64   `json:"proteinG"`
	CarbsG       float64   `json:"carbsG"`
	FatG         float64   `json:"fatG"`
	Source       string    `json:"source,omitempty"`
	LoggedAt     time.Time `json:"loggedAt"`
}

// MealLogStore defines the persistence interface behind the user-history
// provider and the meal logging endpoint
type MealLogStore interface {
	SearchCustomFoods(ctx context.Context, userID, query string, limit int) ([]CustomFood, error)
	SearchLoggedMeals(ctx context.Context, userID, query string, limit int) ([]LoggedMeal, error)
	SaveCustomFood(ctx context.Context, food *CustomFood) error
	LogMeal(ctx context.Context, meal *LoggedMeal) error
}
