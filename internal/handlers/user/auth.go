package user

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// email déjà pris pour un compte local ?
	err := database.MongoAuthDB.Collection("users").
		FindOne(ctx, bson.M{"email": email, "provider": "local"}).Err()
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture utilisateur"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     email,
		Password:  hashedPassword,
		Provider:  "local",
		Role:      "customer",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := database.MongoAuthDB.Collection("users").InsertOne(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	log.Printf("🆕 Compte créé: %s", email)
	issueTokens(c, http.StatusCreated, user)
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := database.MongoAuthDB.Collection("users").
		FindOne(ctx, bson.M{"email": email, "provider": "local", "isActive": true}).
		Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	issueTokens(c, http.StatusOK, user)
}

// issueTokens génère la paire access/refresh et range le refresh dans Redis.
func issueTokens(c *gin.Context, status int, user models.User) {
	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	if err := cache.StoreRefreshToken(user.ID.Hex(), refreshToken, utils.RefreshTokenTTL); err != nil {
		log.Printf("⚠️ Stockage refresh token: %v", err)
	}

	c.JSON(status, gin.H{
		"token":        token,
		"refreshToken": refreshToken,
		"userId":       user.ID.Hex(),
		"email":        user.Email,
		"name":         user.Name,
		"role":         user.Role,
	})
}

// RefreshToken échange un refresh token valide contre une nouvelle paire.
func RefreshToken(c *gin.Context) {
	var input struct {
		UserID       string `json:"userId" binding:"required"`
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := cache.GetRefreshToken(input.UserID)
	if err != nil || stored != input.RefreshToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	oid, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	var user models.User
	err = database.MongoAuthDB.Collection("users").
		FindOne(c.Request.Context(), bson.M{"_id": oid, "isActive": true}).
		Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	issueTokens(c, http.StatusOK, user)
}

// Logout révoque l'access token courant (blacklist sur son jti) et supprime
// le refresh token.
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	tokenID := c.GetString("token_id")

	if tokenID != "" {
		if err := cache.BlacklistToken(tokenID, utils.AccessTokenTTL); err != nil {
			log.Printf("⚠️ Blacklist token: %v", err)
		}
	}
	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Suppression refresh token: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// Me retourne le profil de l'utilisateur connecté.
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var user models.User
	err = database.MongoAuthDB.Collection("users").
		FindOne(c.Request.Context(), bson.M{"_id": oid}).
		Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":   user.ID.Hex(),
		"name":     user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"provider": user.Provider,
		"avatar":   user.Avatar,
	})
}

// ChangePassword change le mot de passe d'un compte local.
func ChangePassword(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	err = database.MongoAuthDB.Collection("users").
		FindOne(ctx, bson.M{"_id": oid, "provider": "local"}).
		Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	ok, err := utils.VerifyPassword(input.CurrentPassword, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe actuel incorrect"})
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur changement mot de passe"})
		return
	}

	_, err = database.MongoAuthDB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"password": hashed, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur changement mot de passe"})
		return
	}

	// les sessions existantes restent valides jusqu'à expiration, on coupe
	// juste le refresh
	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Suppression refresh token: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe modifié"})
}
