package product

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// GetCategories liste les catégories actives (sidebar filtres du storefront).
func GetCategories(c *gin.Context) {
	ctx := c.Request.Context()

	// ✅ Vérifie le cache Redis
	if cached := cache.GetCategories(ctx); cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	cursor, err := database.MongoDB.Collection("categories").Find(ctx,
		bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories"})
		return
	}

	cache.SetCategories(ctx, categories)

	c.JSON(http.StatusOK, categories)
}

// CreateCategory crée une catégorie (admin).
func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cat.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}

	if cat.Slug == "" {
		cat.Slug = Slugify(cat.Name)
	}

	now := time.Now()
	cat.ID = primitive.NewObjectID()
	cat.IsActive = true
	cat.CreatedAt = now
	cat.UpdatedAt = now

	if _, err := database.MongoDB.Collection("categories").InsertOne(c.Request.Context(), cat); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Slug de catégorie déjà utilisé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}

	cache.InvalidateCatalogCache(c.Request.Context())

	c.JSON(http.StatusCreated, cat)
}

// UpdateCategory met à jour une catégorie (admin). Passer isActive à false la
// retire des filtres sans toucher aux produits.
func UpdateCategory(c *gin.Context) {
	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"imageUrl"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.ImageURL != nil {
		set["imageUrl"] = *input.ImageURL
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}

	var updated models.Category
	err = database.MongoDB.Collection("categories").FindOneAndUpdate(c.Request.Context(),
		bson.M{"_id": categoryID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour catégorie"})
		return
	}

	cache.InvalidateCatalogCache(c.Request.Context())

	c.JSON(http.StatusOK, updated)
}
