package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "ecommerce-platform/docs"
	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/services"
)

// Router wires handlers, middleware and routes
type Router struct {
	auth     *AuthHandler
	products *ProductHandler
	carts    *CartHandler
	tickets  *TicketHandler

	authService *services.AuthService
	logger      *zap.Logger
}

// NewRouter creates the route table
func NewRouter(
	auth *AuthHandler,
	products *ProductHandler,
	carts *CartHandler,
	tickets *TicketHandler,
	authService *services.AuthService,
	logger *zap.Logger,
) *Router {
	return &Router{
		auth:        auth,
		products:    products,
		carts:       carts,
		tickets:     tickets,
		authService: authService,
		logger:      logger,
	}
}

// Setup builds the gin engine with all routes registered
func (r *Router) Setup() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(r.logger))
	engine.Use(middleware.RateLimit(rate.Limit(50), 100))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: false,
	}))

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := middleware.Authenticate(r.authService)
	admin := middleware.RequireAdmin()

	api := engine.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.auth.Register)
			auth.POST("/login", r.auth.Login)
			auth.GET("/current", authed, r.auth.Current)
		}

		products := api.Group("/products")
		{
			products.GET("", r.products.List)
			products.GET("/categories", r.products.Categories)
			products.GET("/:id", r.products.Get)
			products.POST("", authed, admin, r.products.Create)
			products.PUT("/:id", authed, admin, r.products.Update)
			products.DELETE("/:id", authed, admin, r.products.Delete)
			products.POST("/:id/restock", authed, admin, r.products.Restock)
		}

		carts := api.Group("/carts")
		{
			carts.POST("", r.carts.Create)
			carts.GET("/:cid", r.carts.Get)
			carts.DELETE("/:cid", r.carts.Clear)
			carts.GET("/:cid/validate", r.carts.Validate)
			carts.POST("/:cid/products/:pid", r.carts.AddItem)
			carts.PUT("/:cid/products/:pid", r.carts.SetItemQuantity)
			carts.DELETE("/:cid/products/:pid", r.carts.RemoveItem)
			carts.POST("/:cid/purchase", authed, r.carts.Purchase)
		}

		tickets := api.Group("/tickets")
		{
			tickets.GET("/code/:code", r.tickets.GetByCode)
			tickets.GET("", authed, r.tickets.List)
			tickets.GET("/my-summary", authed, r.tickets.Summary)
			tickets.GET("/stats", authed, admin, r.tickets.Stats)
			tickets.GET("/:id", authed, r.tickets.Get)
			tickets.PATCH("/:id/status", authed, admin, r.tickets.UpdateStatus)
			tickets.DELETE("/:id", authed, admin, r.tickets.Delete)
		}
	}

	return engine
}
