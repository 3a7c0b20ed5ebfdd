package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/search"
)

var searchService *search.Service

// InitSearchService injecte le service de recherche construit au démarrage
// (store Mongo + résolveur catalogue + index Elastic).
func InitSearchService(svc *search.Service) {
	searchService = svc
}

// parseSearchFilters traduit la query string en SearchFilters. Les valeurs
// numériques illisibles sont ignorées (dimension absente), jamais des erreurs.
func parseSearchFilters(c *gin.Context) search.SearchFilters {
	filters := search.SearchFilters{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		SortBy:   search.SortKey(c.DefaultQuery("sortBy", "relevance")),
	}

	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		filters.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		filters.MaxPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("rating"), 64); err == nil {
		filters.Rating = &v
	}

	// sémantique ternaire : "true"/"false" explicites, sinon pas de contrainte
	switch c.Query("inStock") {
	case "true":
		v := true
		filters.InStock = &v
	case "false":
		v := false
		filters.InStock = &v
	}
	switch c.Query("featured") {
	case "true":
		v := true
		filters.Featured = &v
	case "false":
		v := false
		filters.Featured = &v
	}

	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}

	filters.Page, _ = strconv.Atoi(c.Query("page"))
	filters.Limit, _ = strconv.Atoi(c.Query("limit"))

	return filters
}

// SearchProducts répond à GET /api/search/products : page de produits,
// pagination, facettes et suggestions.
func SearchProducts(c *gin.Context) {
	result, err := searchService.Search(c.Request.Context(), parseSearchFilters(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche échouée"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchSuggestions répond à GET /api/search/suggestions?q=
func SearchSuggestions(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
		return
	}

	suggestions, err := searchService.Suggestions(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Suggestions indisponibles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// TrendingProducts répond à GET /api/search/trending?limit=
func TrendingProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := searchService.Trending(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Produits tendance indisponibles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// QuickSearch répond à GET /api/search/quick?q=&limit= : projection minimale
// pour l'autocomplete du header.
func QuickSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"results": []interface{}{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	results, err := searchService.QuickSearch(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche rapide échouée"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// RecentlyViewed répond à GET /api/search/recently-viewed?productIds= :
// l'historique vit côté client, le serveur ne fait que résoudre les ids.
func RecentlyViewed(c *gin.Context) {
	raw := c.Query("productIds")
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"products": []interface{}{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := searchService.RecentlyViewed(c.Request.Context(), strings.Split(raw, ","), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Historique indisponible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// PopularSearchTerms répond à GET /api/search/popular?limit=
func PopularSearchTerms(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	c.JSON(http.StatusOK, gin.H{"popularTerms": search.PopularSearchTerms(limit)})
}
