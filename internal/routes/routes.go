package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"velora_back_end/internal/handlers"
	"velora_back_end/internal/handlers/payement"
	"velora_back_end/internal/handlers/product"
	"velora_back_end/internal/handlers/user"
	"velora_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(corsMiddleware())
	r.Use(middleware.APIRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Recherche catalogue
	search := api.Group("/search", middleware.SearchRateLimit())
	{
		search.GET("/products", handlers.SearchProducts)
		search.GET("/suggestions", handlers.SearchSuggestions)
		search.GET("/trending", handlers.TrendingProducts)
		search.GET("/quick", handlers.QuickSearch)
		search.GET("/recently-viewed", handlers.RecentlyViewed)
		search.GET("/popular-terms", handlers.PopularSearchTerms)
	}

	// Catalogue public. OptionalAuth : la page produit sait si le visiteur
	// connecté a déjà le produit en wishlist.
	api.GET("/products/:slug", middleware.OptionalAuth(), product.GetProductBySlug)
	api.GET("/categories", product.GetCategories)
	api.GET("/brands", product.GetBrands)

	// Avis
	api.GET("/reviews/product/:id", product.GetProductReviews)
	reviews := api.Group("/reviews", middleware.AuthRequired())
	{
		reviews.POST("/product/:id", product.CreateReview)
		reviews.PUT("/:reviewId", product.UpdateReview)
		reviews.DELETE("/:reviewId", product.DeleteReview)
	}

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.POST("/refresh", user.RefreshToken)
		auth.POST("/logout", middleware.AuthRequired(), user.Logout)
		auth.GET("/me", middleware.AuthRequired(), user.Me)
		auth.PUT("/password", middleware.AuthRequired(), user.ChangePassword)

		auth.GET("/:provider", user.BeginAuth)
		auth.GET("/:provider/callback", user.CallbackAuth)
	}

	// Panier
	cart := api.Group("/cart", middleware.AuthRequired())
	{
		cart.GET("", user.GetCart)
		cart.POST("/add", middleware.CartRateLimit(), user.AddToCart)
		cart.PUT("/:productId", user.UpdateCartItem)
		cart.DELETE("/clear", user.ClearCart)
		cart.DELETE("/:productId", user.RemoveFromCart)
		cart.GET("/ws", user.CartWebSocket)
	}

	// Wishlist
	wishlist := api.Group("/wishlist", middleware.AuthRequired())
	{
		wishlist.GET("", user.GetWishlist)
		wishlist.POST("", user.AddToWishlist)
		wishlist.DELETE("/:productId", user.RemoveFromWishlist)
	}

	// Commandes
	orders := api.Group("/orders", middleware.AuthRequired())
	{
		orders.GET("", user.GetMyOrders)
		orders.GET("/:id", user.GetOrderByID)
	}

	// Paiement
	api.POST("/checkout", middleware.AuthRequired(), payement.Checkout)
	api.POST("/webhook/stripe", payement.StripeWebhook)

	// Administration catalogue et commandes
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.POST("/products", product.CreateProduct)
		admin.GET("/products/:id", product.GetProductByID)
		admin.PUT("/products/:id", product.UpdateProduct)
		admin.DELETE("/products/:id", product.DeleteProduct)
		admin.POST("/products/:id/images", product.UploadProductImage)

		admin.POST("/categories", product.CreateCategory)
		admin.PUT("/categories/:id", product.UpdateCategory)
		admin.POST("/brands", product.CreateBrand)
		admin.PUT("/brands/:id", product.UpdateBrand)

		admin.GET("/orders/:id", payement.GetOrderAdmin)
		admin.PUT("/orders/:id/status", payement.UpdateOrderStatus)
	}
}

func corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 1 && origins[0] == "" {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
