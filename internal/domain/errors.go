package domain

import "errors"

var (
	// ErrInvalidQuery is returned when the search query is empty after trimming
	ErrInvalidQuery = errors.New("search query must not be empty")

	// ErrInvalidLimit is returned when the requested result limit is not positive
	ErrInvalidLimit = errors.New("result limit must be positive")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrStoreUnavailable is returned when the meal-log store cannot be reached
	ErrStoreUnavailable = errors.New("meal-log store unavailable")

	// ErrFoodNotFound is returned when a referenced food does not exist in the store
	ErrFoodNotFound = errors.New("food not found")
)
