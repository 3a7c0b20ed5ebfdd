package product

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// CreateReview crée un avis sur un produit et recalcule la note agrégée.
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")
	userName := c.GetString("user_name")

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Title   string `json:"title" binding:"max=100"`
		Comment string `json:"comment" binding:"required,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// Vérifier que le produit existe et est actif
	err = database.MongoDB.Collection("products").
		FindOne(ctx, bson.M{"_id": productID, "isActive": true}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	// Un seul avis actif par utilisateur et par produit
	count, err := database.MongoDB.Collection("reviews").
		CountDocuments(ctx, bson.M{"product": productID, "userId": userID, "isActive": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà laissé un avis sur ce produit"})
		return
	}

	now := time.Now()
	review := models.Review{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := database.MongoDB.Collection("reviews").InsertOne(ctx, review); err != nil {
		log.Printf("❌ Erreur création avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création avis"})
		return
	}

	if err := RecomputeProductRating(ctx, productID); err != nil {
		log.Printf("⚠️ Recalcul note produit %s: %v", productID.Hex(), err)
	}

	log.Printf("⭐ Avis créé pour produit %s (note: %d/5)", productID.Hex(), req.Rating)

	c.JSON(http.StatusCreated, gin.H{"message": "Avis créé avec succès", "review": review})
}

// UpdateReview modifie l'avis de l'utilisateur courant et recalcule la note.
func UpdateReview(c *gin.Context) {
	userID := c.GetString("user_id")

	reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID avis invalide"})
		return
	}

	var req struct {
		Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
		Title   *string `json:"title"`
		Comment *string `json:"comment" binding:"omitempty,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Comment != nil {
		set["comment"] = *req.Comment
	}

	ctx := c.Request.Context()

	var updated models.Review
	err = database.MongoDB.Collection("reviews").FindOneAndUpdate(ctx,
		bson.M{"_id": reviewID, "userId": userID, "isActive": true},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour avis"})
		return
	}

	if err := RecomputeProductRating(ctx, updated.ProductID); err != nil {
		log.Printf("⚠️ Recalcul note produit %s: %v", updated.ProductID.Hex(), err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Avis mis à jour", "review": updated})
}

// DeleteReview désactive un avis (le sien, ou n'importe lequel pour un admin)
// et recalcule la note du produit.
func DeleteReview(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	reviewID, err := primitive.ObjectIDFromHex(c.Param("reviewId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID avis invalide"})
		return
	}

	filter := bson.M{"_id": reviewID, "isActive": true}
	if role != "admin" {
		filter["userId"] = userID
	}

	ctx := c.Request.Context()

	var review models.Review
	err = database.MongoDB.Collection("reviews").FindOneAndUpdate(ctx,
		filter,
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Avis introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression avis"})
		return
	}

	if err := RecomputeProductRating(ctx, review.ProductID); err != nil {
		log.Printf("⚠️ Recalcul note produit %s: %v", review.ProductID.Hex(), err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Avis supprimé"})
}

// GetProductReviews liste les avis actifs d'un produit, du plus récent au
// plus ancien.
func GetProductReviews(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()

	cursor, err := database.MongoDB.Collection("reviews").Find(ctx,
		bson.M{"product": productID, "isActive": true},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	var totalRating int
	for _, r := range reviews {
		totalRating += r.Rating
	}
	var averageRating float64
	if len(reviews) > 0 {
		averageRating = RoundRating(float64(totalRating) / float64(len(reviews)))
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"total_reviews":  len(reviews),
		"average_rating": averageRating,
	})
}

// RoundRating arrondit une note à une décimale.
func RoundRating(rating float64) float64 {
	return math.Round(rating*10) / 10
}

// RecomputeProductRating recalcule rating et reviewCount d'un produit :
// moyenne des avis actifs arrondie à une décimale, 0 sans avis.
func RecomputeProductRating(ctx context.Context, productID primitive.ObjectID) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"product": productID, "isActive": true}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := database.MongoDB.Collection("reviews").Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return err
	}

	rating, count := 0.0, 0
	if len(docs) > 0 {
		rating = RoundRating(docs[0].Avg)
		count = docs[0].Count
	}

	_, err = database.MongoDB.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"rating": rating, "reviewCount": count, "updatedAt": time.Now()}},
	)
	return err
}
