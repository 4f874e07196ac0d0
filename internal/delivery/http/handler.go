package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/burpeebet/foodsearch/internal/domain"
	"github.com/burpeebet/foodsearch/internal/usecase"
)

// SearchService is the usecase surface the HTTP layer depends on.
type SearchService interface {
	SearchFoods(ctx context.Context, query string, opts usecase.SearchOptions) (*domain.SearchResult, error)
	SearchByBarcode(ctx context.Context, barcode string) (*domain.BarcodeResult, error)
	GetPopularFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error)
	GetFoodsByCategory(ctx context.Context, category string, limit int) ([]domain.FoodRecord, error)
	ClearCache()
	Stats(ctx context.Context) (*domain.CacheStats, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search SearchService
}

// NewHandler creates a new HTTP handler
func NewHandler(search SearchService) *Handler {
	return &Handler{search: search}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodsearch",
		"version": "1.0.0",
	})
}

// SearchFoods handles hybrid text search requests
func (h *Handler) SearchFoods(c *gin.Context) {
	query := c.Query("q")

	opts := usecase.DefaultSearchOptions()
	opts.Limit = intQuery(c, "limit", 0)
	if v := c.Query("cache_first"); v != "" {
		cacheFirst, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cache_first must be a boolean"})
			return
		}
		opts.CacheFirst = cacheFirst
	}

	result, err := h.search.SearchFoods(c.Request.Context(), query, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchByBarcode handles single-product barcode lookups
func (h *Handler) SearchByBarcode(c *gin.Context) {
	result, err := h.search.SearchByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Source == domain.ResultSourceNotFound {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PopularFoods returns the most-retrieved cached foods
func (h *Handler) PopularFoods(c *gin.Context) {
	foods, err := h.search.GetPopularFoods(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": foods, "total": len(foods)})
}

// FoodsByCategory returns cached foods for one category
func (h *Handler) FoodsByCategory(c *gin.Context) {
	foods, err := h.search.GetFoodsByCategory(c.Request.Context(), c.Param("category"), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": foods, "total": len(foods)})
}

// CacheStats returns aggregate statistics about the food cache
func (h *Handler) CacheStats(c *gin.Context) {
	stats, err := h.search.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ClearCache drops the in-process memo cache
func (h *Handler) ClearCache(c *gin.Context) {
	h.search.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProviderFailure), errors.Is(err, domain.ErrProviderParse):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
