package user

import (
	"encoding/json"
	"errors"
	"log"
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

const wishlistCacheTTL = 10 * time.Minute

func wishlistCacheKey(userID string) string {
	return "wishlist:" + userID
}

// GetWishlist retourne la wishlist résolue (produits actifs uniquement).
func GetWishlist(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	// Cache Redis d'abord
	if cached, err := cache.GetCache(wishlistCacheKey(userID)); err == nil {
		var view models.WishlistView
		if json.Unmarshal([]byte(cached), &view) == nil {
			c.JSON(http.StatusOK, view)
			return
		}
	}

	var wishlist models.Wishlist
	err := database.MongoDB.Collection("wishlists").
		FindOne(ctx, bson.M{"userId": userID}).
		Decode(&wishlist)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wishlist"})
		return
	}

	view := models.WishlistView{UserID: userID, Items: []models.Product{}}

	if len(wishlist.Products) > 0 {
		ids := make([]primitive.ObjectID, 0, len(wishlist.Products))
		for _, hex := range wishlist.Products {
			if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
				ids = append(ids, oid)
			}
		}

		cursor, err := database.MongoDB.Collection("products").
			Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "isActive": true})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
			return
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &view.Items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
			return
		}
	}

	if data, err := json.Marshal(view); err == nil {
		cache.SetCache(wishlistCacheKey(userID), data, wishlistCacheTTL)
	}

	c.JSON(http.StatusOK, view)
}

// AddToWishlist ajoute un produit à la wishlist ($addToSet, pas de doublon).
func AddToWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	oid, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()

	err = database.MongoDB.Collection("products").
		FindOne(ctx, bson.M{"_id": oid, "isActive": true}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	_, err = database.MongoDB.Collection("wishlists").UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$addToSet": bson.M{"products": req.ProductID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("❌ Erreur ajout wishlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout à la wishlist"})
		return
	}

	cache.DeleteCache(wishlistCacheKey(userID))

	c.JSON(http.StatusOK, gin.H{
		"message":   "Produit ajouté à la wishlist",
		"productId": req.ProductID,
	})
}

// RemoveFromWishlist retire un produit de la wishlist.
func RemoveFromWishlist(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")

	ctx := c.Request.Context()

	_, err := database.MongoDB.Collection("wishlists").UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"products": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		log.Printf("❌ Erreur suppression wishlist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression de la wishlist"})
		return
	}

	cache.DeleteCache(wishlistCacheKey(userID))

	c.JSON(http.StatusOK, gin.H{"message": "Produit retiré de la wishlist"})
}
