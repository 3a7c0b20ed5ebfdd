package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const cartTTL = 30 * 24 * time.Hour

func cartKey(userID string) string {
	return "cart:" + userID
}

func loadCart(ctx context.Context, userID string) []models.CartItem {
	data, err := database.Redis.Get(ctx, cartKey(userID)).Result()
	if err != nil || data == "" {
		return []models.CartItem{}
	}

	var cart []models.CartItem
	if json.Unmarshal([]byte(data), &cart) != nil {
		return []models.CartItem{}
	}
	return cart
}

// saveCart persiste le panier et notifie les sessions WebSocket du client.
func saveCart(ctx context.Context, userID string, cart []models.CartItem) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := database.Redis.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		return err
	}
	database.Redis.Publish(ctx, cartKey(userID), "updated")
	return nil
}

// GetCart retourne le panier de l'utilisateur avec le total serveur.
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	cart := loadCart(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{
		"items": cart,
		"total": models.CartTotal(cart),
	})
}

// AddToCart ajoute un produit au panier. Le prix vient toujours du
// catalogue, jamais du client.
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	oid, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()

	var product models.Product
	err = database.MongoDB.Collection("products").
		FindOne(ctx, bson.M{"_id": oid, "isActive": true}).
		Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	cart := loadCart(ctx, userID)

	// quantité totale demandée pour ce produit
	requested := input.Quantity
	for _, item := range cart {
		if item.ProductID == input.ProductID {
			requested += item.Quantity
		}
	}
	if product.StockQuantity < requested {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Stock insuffisant",
			"product":   product.Name,
			"available": product.StockQuantity,
			"requested": requested,
		})
		return
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}

	found := false
	for i := range cart {
		if cart[i].ProductID == input.ProductID {
			cart[i].Quantity += input.Quantity
			cart[i].Price = product.Price
			found = true
			break
		}
	}
	if !found {
		cart = append(cart, models.CartItem{
			ProductID: input.ProductID,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     product.Price,
			Image:     image,
			Quantity:  input.Quantity,
		})
	}

	if err := saveCart(ctx, userID, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit ajouté au panier",
		"items":   cart,
		"total":   models.CartTotal(cart),
	})
}

// UpdateCartItem fixe la quantité d'une ligne (0 la supprime).
func UpdateCartItem(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	ctx := c.Request.Context()
	cart := loadCart(ctx, userID)

	newCart := make([]models.CartItem, 0, len(cart))
	for _, item := range cart {
		if item.ProductID == productID {
			if input.Quantity == 0 {
				continue
			}
			item.Quantity = input.Quantity
		}
		newCart = append(newCart, item)
	}

	if err := saveCart(ctx, userID, newCart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": newCart,
		"total": models.CartTotal(newCart),
	})
}

// RemoveFromCart retire une ligne du panier.
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")

	ctx := c.Request.Context()
	cart := loadCart(ctx, userID)

	newCart := make([]models.CartItem, 0, len(cart))
	for _, item := range cart {
		if item.ProductID != productID {
			newCart = append(newCart, item)
		}
	}

	if err := saveCart(ctx, userID, newCart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit supprimé du panier",
		"items":   newCart,
		"total":   models.CartTotal(newCart),
	})
}

// ClearCart vide le panier.
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	if err := database.Redis.Del(ctx, cartKey(userID)).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}
	database.Redis.Publish(ctx, cartKey(userID), "cleared")

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}
