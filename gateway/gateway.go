// Package gateway is the HTTP surface of the shop: gin routes over the shop
// services, JSON in and out.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/example/tienda/docs"
	"github.com/example/tienda/pkg/analytics"
	"github.com/example/tienda/pkg/auth"
	"github.com/example/tienda/pkg/config"
	"github.com/example/tienda/pkg/payment"
	"github.com/example/tienda/pkg/shop"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type PaymentSheetProvider interface {
	PaymentSheet(ctx context.Context, amount float64) (*payment.PaymentSheet, error)
}

type PayPalOrderer interface {
	CreateOrder(ctx context.Context, amount float64) (string, error)
}

type HealthReporter interface {
	Failures() map[string]error
}

// Deps are the services behind the routes. Payment providers, the token
// verifier and the health reporter may be nil.
type Deps struct {
	Carts    *shop.CartService
	Orders   *shop.OrderService
	Notify   *shop.NotifyService
	Catalog  *shop.CatalogService
	Content  *shop.ContentService
	Users    *shop.UserService
	Stats    *analytics.Service
	Stripe   PaymentSheetProvider
	PayPal   PayPalOrderer
	Verifier auth.TokenVerifier
	Health   HealthReporter
}

type Gateway struct {
	config *config.Config
	deps   Deps
	logger *zap.Logger
	router *gin.Engine
	server *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, deps Deps) *Gateway {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	g := &Gateway{
		config: cfg,
		deps:   deps,
		logger: logger,
		router: router,
	}
	g.SetupRoutes()
	return g
}

func (g *Gateway) SetupRoutes() {
	// Health check
	g.router.GET("/health", g.health)

	g.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found", "error": c.Request.URL.Path})
	})
	g.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"message": "Method not allowed",
			"error":   fmt.Sprintf("%s is not allowed on %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	admin := g.requireAdmin()
	notifyGuard := g.openRoute
	if g.config.Auth.GuardNotify {
		notifyGuard = admin
	}

	// API v1 routes
	v1 := g.router.Group("/api/v1")
	{
		cart := v1.Group("/cart")
		{
			cart.GET("/active", g.getActiveCart)
			cart.PUT("", g.updateCart)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", g.placeOrder)
			orders.GET("", g.listOrders)
			orders.GET("/all", admin, g.listAllOrders)
			orders.POST("/notify", notifyGuard, g.notifyStatus)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/sheet", g.paymentSheet)
			payments.POST("/paypal", g.paypalOrder)
		}

		products := v1.Group("/products")
		{
			products.GET("", g.listProducts)
			products.POST("", admin, g.addProduct)
			products.GET("/:id", g.getProduct)
			products.PUT("/:id", admin, g.updateProduct)
			products.DELETE("/:id", admin, g.deleteProduct)
		}

		faq := v1.Group("/faq")
		{
			faq.GET("", g.listFAQ)
			faq.POST("", admin, g.addFAQ)
			faq.GET("/:id", g.getFAQ)
			faq.DELETE("/:id", admin, g.deleteFAQ)
		}

		posts := v1.Group("/posts")
		{
			posts.GET("", g.listPosts)
			posts.POST("", admin, g.addPost)
			posts.GET("/:id", g.getPost)
			posts.DELETE("/:id", admin, g.deletePost)
		}

		users := v1.Group("/users")
		{
			users.POST("", g.registerUser)
			users.GET("/:uid", g.getUser)
			users.PUT("/:uid", g.updateUser)
		}
	}

	adminGroup := g.router.Group("/admin")
	{
		adminGroup.GET("/check", g.adminCheck)
		adminGroup.GET("/stats", g.adminOnly, g.adminStats)
	}

	// Swagger
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Gateway.Host, g.config.Gateway.Port)
	g.server = &http.Server{
		Addr:         addr,
		Handler:      g.router,
		ReadTimeout:  g.config.Gateway.ReadTimeout,
		WriteTimeout: g.config.Gateway.WriteTimeout,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	if g.deps.Health != nil {
		if failed := g.deps.Health.Failures(); len(failed) > 0 {
			deps := make(gin.H, len(failed))
			for name, err := range failed {
				deps[name] = err.Error()
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": deps})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const requestIDHeader = "X-Request-ID"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
