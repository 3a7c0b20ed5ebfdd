package payement

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// Checkout crée le PaymentIntent Stripe à partir du panier Redis. Les prix
// et le stock sont relus depuis le catalogue, la commande n'est écrite
// qu'au webhook payment_intent.succeeded.
func Checkout(c *gin.Context) {
	var req struct {
		Shipping models.ShippingAddress `json:"shipping" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if req.Shipping.Street == "" || req.Shipping.City == "" || req.Shipping.Country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse de livraison incomplète"})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	ctx := c.Request.Context()

	// 1. Panier depuis Redis
	cartData, err := database.Redis.Get(ctx, "cart:"+userID).Result()
	if err != nil || cartData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide ou introuvable"})
		return
	}

	var cartItems []models.CartItem
	if err := json.Unmarshal([]byte(cartData), &cartItems); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	if len(cartItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	// 2. Revalider stock et prix sur le catalogue
	products := database.MongoDB.Collection("products")
	for i, item := range cartItems {
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + item.ProductID})
			return
		}

		var product models.Product
		err = products.FindOne(ctx, bson.M{"_id": oid, "isActive": true}).Decode(&product)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable: " + item.Name})
			return
		}

		if product.StockQuantity < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Stock insuffisant",
				"product":   product.Name,
				"available": product.StockQuantity,
				"requested": item.Quantity,
			})
			return
		}

		// prix et nom courants du catalogue
		cartItems[i].Name = product.Name
		cartItems[i].Price = product.Price
	}

	total := models.CartTotal(cartItems)

	// 3. Sérialiser panier et adresse pour les metadata Stripe
	cartJSON, err := json.Marshal(cartItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sérialisation panier"})
		return
	}
	shippingJSON, err := json.Marshal(req.Shipping)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sérialisation adresse"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(total * 100)),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"user_id":  userID,
			"email":    email,
			"cart":     string(cartJSON),
			"shipping": string(shippingJSON),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement"})
		return
	}

	log.Printf("💳 Checkout créé: %s (%.2f€) pour %s", intent.ID, total, email)

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
		"amount":       total,
		"currency":     "eur",
		"itemsCount":   len(cartItems),
	})
}
