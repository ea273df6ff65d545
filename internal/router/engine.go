package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// NewEngine builds the gin engine with CORS and every storefront route.
func NewEngine(h *Handler) *gin.Engine {
	if global.GetEnvOrDefault("ENV", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     global.GetAllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	InitializeRoutes(router, h)
	return router
}

func InitializeRoutes(router *gin.Engine, h *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/categories", h.GetCategories)
		api.GET("/products", h.GetProducts)

		analytics := api.Group("/analytics")
		{
			analytics.GET("/catalog", h.GetCatalogReport)
		}

		api.POST("/sessions", h.CreateSession)

		session := api.Group("/sessions/:sessionId")
		session.Use(SessionMiddleware())
		{
			session.GET("", h.GetSession)
			session.GET("/storefront", h.GetStorefront)
			session.PUT("/section", h.Navigate)

			session.POST("/cart/open", h.OpenCart)
			session.POST("/cart/close", h.CloseCart)
			session.POST("/cart/items", h.AddToCart)
			session.PUT("/cart/items/:productId", h.UpdateCartItem)
			session.DELETE("/cart/items/:productId", h.RemoveFromCart)
			session.DELETE("/cart", h.ClearCart)

			session.POST("/checkout/open", h.OpenCheckout)
			session.POST("/checkout/close", h.CloseCheckout)
			session.POST("/checkout", h.PlaceOrder)
		}
	}
}
