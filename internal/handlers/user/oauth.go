package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// ================== AUTH SOCIALE ==================

// BeginAuth démarre le flow OAuth pour un provider (google, facebook). Les
// providers sont enregistrés au démarrage via goth.UseProviders.
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}
	if _, err := goth.GetProvider(provider); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	state := generateRandomState()
	if redirectURL := c.Query("redirect_url"); redirectURL != "" {
		_ = database.Redis.Set(context.Background(), "oauth_redirect:"+state, redirectURL, 10*time.Minute).Err()
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

// CallbackAuth termine le flow OAuth, crée ou fusionne le compte et
// redirige vers le front avec le token.
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Échec OAuth %s: %v", provider, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification échouée"})
		return
	}

	user, err := findOrCreateOAuthUser(c.Request.Context(), provider, gothUser.UserID, gothUser.Email, gothUser.Name, gothUser.AvatarURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	redirectWithToken(c, state, token)
}

// findOrCreateOAuthUser cherche par provider puis par email, et fusionne un
// compte local existant avec le provider social.
func findOrCreateOAuthUser(ctx context.Context, provider, providerID, email, name, avatar string) (models.User, error) {
	col := database.MongoAuthDB.Collection("users")
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := col.FindOne(ctx, bson.M{"provider": provider, "providerId": providerID}).Decode(&user)
	if err == nil {
		log.Printf("✅ Utilisateur OAuth existant: %s", email)
		return user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, err
	}

	err = col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		now := time.Now()
		user = models.User{
			ID:         primitive.NewObjectID(),
			Email:      email,
			Name:       name,
			Provider:   provider,
			ProviderID: providerID,
			Role:       "customer",
			Avatar:     avatar,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := col.InsertOne(ctx, user); err != nil {
			return models.User{}, err
		}
		log.Printf("🆕 Utilisateur OAuth créé (%s): %s", provider, email)
		return user, nil
	}
	if err != nil {
		return models.User{}, err
	}

	// compte existant → fusion avec le provider
	_, err = col.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"provider":   provider,
			"providerId": providerID,
			"avatar":     avatar,
			"updatedAt":  time.Now(),
		},
	})
	if err != nil {
		return models.User{}, err
	}
	log.Printf("🔄 Compte existant fusionné avec provider %s: %s", provider, email)

	user.Provider = provider
	user.ProviderID = providerID
	return user, nil
}

func redirectWithToken(c *gin.Context, state, token string) {
	ctx := context.Background()

	redirectURI, _ := database.Redis.Get(ctx, "oauth_redirect:"+state).Result()
	_, _ = database.Redis.Del(ctx, "oauth_redirect:"+state).Result()

	if redirectURI == "" {
		redirectURI = os.Getenv("FRONTEND_URL")
		if redirectURI == "" {
			redirectURI = "http://localhost:5173"
		}
	}

	allowed := strings.Split(os.Getenv("OAUTH_ALLOWED_REDIRECTS"), ",")
	if len(allowed) == 1 && allowed[0] == "" {
		allowed = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	valid := false
	for _, o := range allowed {
		if o != "" && strings.HasPrefix(redirectURI, strings.TrimSpace(o)) {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Redirect url non autorisé"})
		return
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURI+sep+"token="+url.QueryEscape(token))
}
