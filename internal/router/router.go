package router

import (
	"github.com/gin-gonic/gin"
	"github.com/vostra/vostra-backend/config"
	"github.com/vostra/vostra-backend/internal/app/controller"
	"github.com/vostra/vostra-backend/internal/middleware"
)

type Router struct {
	sessionController *controller.SessionController
	productController *controller.ProductController
	cartController    *controller.CartController
	stockController   *controller.StockController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	sessionController *controller.SessionController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	stockController *controller.StockController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		sessionController: sessionController,
		productController: productController,
		cartController:    cartController,
		stockController:   stockController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "VOSTRA API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/session", r.sessionController.CreateSession)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		v1.GET("/sizes", r.productController.ListSizes)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate())
		cart.Use(middleware.SessionTouchMiddleware(r.config.Session.TTL))
		{
			cart.GET("", r.cartController.GetCart)
			cart.GET("/summary", r.cartController.GetSummary)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items", r.cartController.UpdateQuantity)
			cart.DELETE("/items", r.cartController.RemoveItem)
			cart.DELETE("", r.cartController.ClearCart)

			cart.POST("/migrate",
				r.authMiddleware.Authenticate(),
				r.cartController.Migrate,
			)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			admin.PUT("/stock", r.stockController.UpsertStock)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Session-Token, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
