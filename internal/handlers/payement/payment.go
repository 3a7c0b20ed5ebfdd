package payement

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/store"
	"velora_back_end/internal/utils"
)

// StripeWebhook reçoit les événements Stripe et vérifie leur signature.
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(event)

	c.Status(http.StatusOK)
}

// handleStripeEvent transforme un payment_intent.succeeded en commande :
// écriture ledger ScyllaDB, décrément du stock, vidage du panier, e-mail.
func handleStripeEvent(event stripe.Event) {
	if event.Type != "payment_intent.succeeded" {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ Erreur décodage PaymentIntent:", err)
		return
	}

	userID := pi.Metadata["user_id"]
	userEmail := pi.Metadata["email"]
	cartData := pi.Metadata["cart"]
	shippingData := pi.Metadata["shipping"]

	if userID == "" || userEmail == "" || cartData == "" {
		log.Println("⚠️ Métadonnées incomplètes")
		return
	}

	ctx := context.Background()

	// Idempotence : Stripe peut relivrer l'événement
	claimed, err := database.Redis.SetNX(ctx, "stripe:pi:"+pi.ID, "processing", 7*24*time.Hour).Result()
	if err != nil {
		log.Println("❌ Erreur Redis idempotence:", err)
		return
	}
	if !claimed {
		log.Printf("🔁 PaymentIntent %s déjà traité, on ignore.", pi.ID)
		return
	}

	var cartItems []models.CartItem
	if err := json.Unmarshal([]byte(cartData), &cartItems); err != nil {
		log.Println("❌ Erreur JSON panier:", err)
		return
	}

	var shipping models.ShippingAddress
	if shippingData != "" {
		if err := json.Unmarshal([]byte(shippingData), &shipping); err != nil {
			log.Println("⚠️ Erreur JSON adresse:", err)
		}
	}

	now := time.Now()
	total := models.CartTotal(cartItems)
	order := models.Order{
		ID:              gocql.TimeUUID(),
		UserID:          userID,
		Email:           userEmail,
		Subtotal:        total,
		Total:           total,
		Status:          "paid",
		PaymentIntentID: pi.ID,
		Shipping:        shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           make([]models.OrderItem, 0, len(cartItems)),
	}
	for _, item := range cartItems {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err := store.InsertOrder(order); err != nil {
		log.Println("❌ Erreur insertion commande:", err)
		database.Redis.Del(ctx, "stripe:pi:"+pi.ID)
		return
	}
	log.Printf("✅ Commande %s enregistrée (%.2f€)", order.ID, order.Total)

	decrementStock(ctx, cartItems)

	// Panier vidé après la commande, les sessions WebSocket sont notifiées
	if err := database.Redis.Del(ctx, "cart:"+userID).Err(); err == nil {
		database.Redis.Publish(ctx, "cart:"+userID, "cleared")
		log.Printf("🧹 Panier supprimé Redis pour %s", userID)
	}

	html := utils.GenerateOrderConfirmationHTML(order)

	pdf, err := utils.GenerateInvoicePDF(order)
	if err != nil {
		log.Println("❌ Erreur génération PDF :", err)
		pdf = nil
	}

	go func() {
		if err := utils.SendConfirmationEmail(userEmail, "Confirmation de votre commande Velora", html, pdf); err != nil {
			log.Println("❌ Erreur envoi e-mail confirmation :", err)
		} else {
			log.Println("📧 E-mail de confirmation envoyé à", userEmail)
		}
	}()
}

// decrementStock décrémente le stock catalogue et recalcule inStock.
func decrementStock(ctx context.Context, items []models.CartItem) {
	products := database.MongoDB.Collection("products")

	for _, item := range items {
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			continue
		}

		_, err = products.UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{
				"$inc": bson.M{"stockQuantity": -item.Quantity},
				"$set": bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			log.Printf("⚠️ Décrément stock %s: %v", item.ProductID, err)
			continue
		}

		// passe inStock à false si le stock est épuisé
		_, err = products.UpdateOne(ctx,
			bson.M{"_id": oid, "stockQuantity": bson.M{"$lte": 0}},
			bson.M{"$set": bson.M{"inStock": false, "stockQuantity": 0}},
		)
		if err != nil {
			log.Printf("⚠️ Mise à jour inStock %s: %v", item.ProductID, err)
		}
	}
}
