package product

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
)

var elasticIndex = services.NewElasticIndex()

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify dérive un slug URL-safe depuis un nom.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// CreateProduct crée un produit (admin). La catégorie et la marque doivent
// exister ; inStock est toujours dérivé de stockQuantity.
func CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if p.Name == "" || p.Price < 0 || p.SKU == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom, prix et SKU sont obligatoires"})
		return
	}

	ctx := c.Request.Context()

	// ✅ Vérifie la catégorie et la marque dans le catalogue
	if err := database.MongoDB.Collection("categories").
		FindOne(ctx, bson.M{"_id": p.CategoryID}).Err(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
		return
	}
	if err := database.MongoDB.Collection("brands").
		FindOne(ctx, bson.M{"_id": p.BrandID}).Err(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Marque introuvable"})
		return
	}

	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}

	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.IsActive = true
	p.Rating = 0
	p.ReviewCount = 0
	p.SyncStock()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := database.MongoDB.Collection("products").InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Slug ou SKU déjà utilisé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// 🔄 Indexation Elasticsearch + invalidation cache
	go elasticIndex.IndexProduct(p)
	cache.InvalidateCatalogCache(c.Request.Context())

	c.JSON(http.StatusCreated, p)
}

// UpdateProduct met à jour un produit (admin). Les champs rating, reviewCount
// et inStock ne sont jamais modifiables directement.
func UpdateProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Name          *string                `json:"name"`
		Description   *string                `json:"description"`
		Price         *float64               `json:"price"`
		OriginalPrice *float64               `json:"originalPrice"`
		Image         *string                `json:"image"`
		Images        []string               `json:"images"`
		StockQuantity *int                   `json:"stockQuantity"`
		Featured      *bool                  `json:"featured"`
		Specifications map[string]interface{} `json:"specifications"`
		Tags          []string               `json:"tags"`
		Weight        *float64               `json:"weight"`
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
	if input.Price != nil {
		set["price"] = *input.Price
	}
	if input.OriginalPrice != nil {
		set["originalPrice"] = *input.OriginalPrice
	}
	if input.Image != nil {
		set["image"] = *input.Image
	}
	if input.Images != nil {
		set["images"] = input.Images
	}
	if input.StockQuantity != nil {
		// inStock suit toujours stockQuantity
		set["stockQuantity"] = *input.StockQuantity
		set["inStock"] = *input.StockQuantity > 0
	}
	if input.Featured != nil {
		set["featured"] = *input.Featured
	}
	if input.Specifications != nil {
		set["specifications"] = input.Specifications
	}
	if input.Tags != nil {
		set["tags"] = input.Tags
	}
	if input.Weight != nil {
		set["weight"] = *input.Weight
	}

	ctx := c.Request.Context()

	var updated models.Product
	err = database.MongoDB.Collection("products").FindOneAndUpdate(ctx,
		bson.M{"_id": productID, "isActive": true},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go elasticIndex.IndexProduct(updated)
	cache.InvalidateCatalogCache(ctx)

	c.JSON(http.StatusOK, updated)
}

// DeleteProduct désactive un produit (soft delete, admin) : il disparaît des
// lectures mais reste en base.
func DeleteProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()

	result, err := database.MongoDB.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	go elasticIndex.RemoveProduct(productID.Hex())
	cache.InvalidateCatalogCache(ctx)

	c.JSON(http.StatusOK, gin.H{"message": "Produit désactivé"})
}

// GetProductBySlug récupère un produit actif avec sa catégorie et sa marque
// résolues, pour la page produit. Pour un visiteur authentifié (OptionalAuth),
// inWishlist indique si le produit est dans sa wishlist.
func GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	ctx := c.Request.Context()

	var p models.Product
	err := database.MongoDB.Collection("products").
		FindOne(ctx, bson.M{"slug": slug, "isActive": true}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	populateRefs(ctx, &p)
	signImages(ctx, &p)

	if userID := c.GetString("user_id"); userID != "" {
		count, err := database.MongoDB.Collection("wishlists").CountDocuments(ctx,
			bson.M{"userId": userID, "products": p.ID.Hex()})
		if err == nil {
			in := count > 0
			p.InWishlist = &in
		}
	}

	c.JSON(http.StatusOK, p)
}

// GetProductByID sert la variante admin (produits désactivés inclus).
func GetProductByID(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()

	var p models.Product
	err = database.MongoDB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	populateRefs(ctx, &p)

	c.JSON(http.StatusOK, p)
}

func populateRefs(ctx context.Context, p *models.Product) {
	var cat models.CategoryRef
	if err := database.MongoDB.Collection("categories").
		FindOne(ctx, bson.M{"_id": p.CategoryID}).Decode(&cat); err == nil {
		p.Category = &cat
	}
	var brand models.BrandRef
	if err := database.MongoDB.Collection("brands").
		FindOne(ctx, bson.M{"_id": p.BrandID}).Decode(&brand); err == nil {
		p.Brand = &brand
	}
}

// signImages remplace les chemins objets MinIO par des URLs signées 24h.
func signImages(ctx context.Context, p *models.Product) {
	if p.Image != "" {
		if signed, err := services.GenerateSignedURL(ctx, p.Image, 24*time.Hour); err == nil {
			p.Image = signed
		}
	}
	for i, img := range p.Images {
		if signed, err := services.GenerateSignedURL(ctx, img, 24*time.Hour); err == nil {
			p.Images[i] = signed
		}
	}
}

// UploadProductImage pousse une image dans MinIO et renvoie le chemin objet
// à enregistrer sur le produit.
func UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier 'image' manquant"})
		return
	}

	objectPath, err := services.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": objectPath})
}
