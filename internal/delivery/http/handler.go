package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nutrilog/backend/internal/domain"
)

// FoodSearcher is the engine surface the delivery layer depends on
type FoodSearcher interface {
	Search(ctx context.Context, query string, limit int, userID string) ([]domain.FoodSearchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher     FoodSearcher
	store        domain.MealLogStore
	defaultLimit int
}

// NewHandler creates a new HTTP handler. store may be nil when meal logging
// is disabled.
func NewHandler(searcher FoodSearcher, store domain.MealLogStore, defaultLimit int) *Handler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &Handler{
		searcher:     searcher,
		store:        store,
		defaultLimit: defaultLimit,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutrilog-backend",
		"version": "1.0.0",
	})
}

// SearchFoods handles GET /api/v1/foods/search?q=...&limit=...
// The optional X-User-ID header scopes the user-history provider.
func (h *Handler) SearchFoods(c *gin.Context) {
	query := c.Query("q")

	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	userID := c.GetHeader("X-User-ID")

	results, err := h.searcher.Search(c.Request.Context(), query, limit, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) || errors.Is(err, domain.ErrInvalidLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// logMealRequest is the body of POST /api/v1/meals
type logMealRequest struct {
	Name         string  `json:"name" binding:"required"`
	Brand        string  `json:"brand"`
	PortionGrams float64 `json:"portionGrams" binding:"required,gt=0"`
	Kcal         float64 `json:"kcal" binding:"gte=0"`
	ProteinG     float64 `json:"proteinG" binding:"gte=0"`
	CarbsG       float64 `json:"carbsG" binding:"gte=0"`
	FatG         float64 `json:"fatG" binding:"gte=0"`
	Source       string  `json:"source"`
}

// LogMeal handles POST /api/v1/meals, persisting a picked search result so
// the history provider can surface it in later searches
func (h *Handler) LogMeal(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "meal logging is disabled"})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return
	}

	var req logMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal := &domain.LoggedMeal{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		Brand:        req.Brand,
		PortionGrams: req.PortionGrams,
		Kcal:         req.Kcal,
		ProteinG:     req.ProteinG,
		CarbsG:       req.CarbsG,
		FatG:         req.FatG,
		Source:       req.Source,
	}

	if err := h.store.LogMeal(c.Request.Context(), meal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log meal"})
		return
	}

	c.JSON(http.StatusCreated, meal)
}

// customFoodRequest is the body of POST /api/v1/foods
type customFoodRequest struct {
	Name         string  `json:"name" binding:"required"`
	Brand        string  `json:"brand"`
	KcalPer100g  float64 `json:"kcalPer100g" binding:"gte=0"`
	ProteinG     float64 `json:"proteinG" binding:"gte=0"`
	CarbsG       float64 `json:"carbsG" binding:"gte=0"`
	FatG         float64 `json:"fatG" binding:"gte=0"`
	ServingGrams float64 `json:"servingGrams" binding:"gte=0"`
}

// CreateCustomFood handles POST /api/v1/foods, saving a user-defined food
func (h *Handler) CreateCustomFood(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "custom foods are disabled"})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
		return
	}

	var req customFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	food := &domain.CustomFood{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		Brand:        req.Brand,
		KcalPer100g:  req.KcalPer100g,
		ProteinG:     req.ProteinG,
		CarbsG:       req.CarbsG,
		FatG:         req.FatG,
		ServingGrams: req.ServingGrams,
	}

	if err := h.store.SaveCustomFood(c.Request.Context(), food); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save food"})
		return
	}

	c.JSON(http.StatusCreated, food)
}
