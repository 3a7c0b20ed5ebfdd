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

// GetBrands liste les marques actives.
func GetBrands(c *gin.Context) {
	ctx := c.Request.Context()

	if brands := cache.GetBrands(ctx); brands != nil {
		c.JSON(http.StatusOK, brands)
		return
	}

	cursor, err := database.MongoDB.Collection("brands").Find(ctx,
		bson.M{"isActive": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture marques"})
		return
	}
	defer cursor.Close(ctx)

	brands := []models.Brand{}
	if err := cursor.All(ctx, &brands); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture marques"})
		return
	}

	cache.SetBrands(ctx, brands)

	c.JSON(http.StatusOK, brands)
}

// CreateBrand crée une marque (admin).
func CreateBrand(c *gin.Context) {
	var brand models.Brand
	if err := c.ShouldBindJSON(&brand); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if brand.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}

	if brand.Slug == "" {
		brand.Slug = Slugify(brand.Name)
	}

	now := time.Now()
	brand.ID = primitive.NewObjectID()
	brand.IsActive = true
	brand.CreatedAt = now
	brand.UpdatedAt = now

	if _, err := database.MongoDB.Collection("brands").InsertOne(c.Request.Context(), brand); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Slug de marque déjà utilisé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création marque"})
		return
	}

	cache.InvalidateCatalogCache(c.Request.Context())

	c.JSON(http.StatusCreated, brand)
}

// UpdateBrand met à jour une marque (admin).
func UpdateBrand(c *gin.Context) {
	brandID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID marque invalide"})
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Logo        *string `json:"logo"`
		Description *string `json:"description"`
		Website     *string `json:"website"`
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
	if input.Logo != nil {
		set["logo"] = *input.Logo
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Website != nil {
		set["website"] = *input.Website
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}

	var updated models.Brand
	err = database.MongoDB.Collection("brands").FindOneAndUpdate(c.Request.Context(),
		bson.M{"_id": brandID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marque introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour marque"})
		return
	}

	cache.InvalidateCatalogCache(c.Request.Context())

	c.JSON(http.StatusOK, updated)
}
