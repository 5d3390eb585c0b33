// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/handlers"
	"github.com/storefront-labs/storefront-api/internal/middleware"
	"github.com/storefront-labs/storefront-api/internal/models"
	"github.com/storefront-labs/storefront-api/internal/services"
	"github.com/storefront-labs/storefront-api/internal/utils"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the HTTP layer needs. It is assembled once at startup.
type Deps struct {
	Config   *config.Config
	Log      *logrus.Logger
	Store    Pinger
	Limiters *middleware.Limiters

	Auth      *services.AuthService
	Queries   *services.ProductQueryService
	Products  *services.ProductService
	Carts     *services.CartService
	Checkouts *services.CheckoutService
	Tickets   *services.TicketService
}

func New(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Limiters == nil {
		d.Limiters = middleware.DefaultLimiters()
	}

	authHandler := handlers.NewAuthHandler(d.Auth, utils.NewCookieManager(cfg.Cookie.Name, cfg.Cookie.Domain, cfg.Cookie.Secure))
	productHandler := handlers.NewProductHandler(d.Queries, d.Products)
	cartHandler := handlers.NewCartHandler(d.Carts, d.Checkouts)
	ticketHandler := handlers.NewTicketHandler(d.Tickets)

	authRequired := middleware.AuthRequired(d.Auth, cfg.Cookie.Name)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleUser, models.RoleAdmin)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(d.Limiters.General.Middleware())

	r.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if d.Store != nil {
			if err := d.Store.Ping(c.Request.Context()); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": "1.0.0",
		})
	})

	if cfg.AWS.LocalUploadDir != "" {
		r.Static("/uploads", cfg.AWS.LocalUploadDir)
	}

	api := r.Group("/api")
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("/register", d.Limiters.Auth.Middleware(), authHandler.Register)
			sessions.POST("/login", d.Limiters.Auth.Middleware(), authHandler.Login)
			sessions.POST("/forgot-password", d.Limiters.Auth.Middleware(), authHandler.ForgotPassword)
			sessions.POST("/reset-password", d.Limiters.Auth.Middleware(), authHandler.ResetPassword)
			sessions.GET("/current", authRequired, authHandler.Current)
			sessions.POST("/logout", authRequired, authHandler.Logout)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:pid", productHandler.GetProduct)

			admin := products.Group("")
			admin.Use(authRequired, adminOnly)
			{
				admin.POST("", productHandler.CreateProduct)
				admin.PUT("/:pid", productHandler.UpdateProduct)
				admin.DELETE("/:pid", productHandler.DeleteProduct)
				admin.POST("/:pid/thumbnails", d.Limiters.Upload.Middleware(), productHandler.UploadThumbnail)
			}
		}

		carts := api.Group("/carts")
		carts.Use(authRequired, anyRole)
		{
			// Users get their cart at registration.
			carts.POST("", adminOnly, cartHandler.CreateCart)

			owned := carts.Group("/:cid")
			owned.Use(middleware.CartOwnership("cid"))
			{
				owned.GET("", cartHandler.GetCart)
				owned.PUT("", cartHandler.ReplaceProducts)
				owned.DELETE("", cartHandler.ClearCart)
				owned.POST("/product/:pid", cartHandler.AddProduct)
				owned.PUT("/products/:pid", cartHandler.SetQuantity)
				owned.DELETE("/products/:pid", cartHandler.RemoveProduct)
				owned.POST("/purchase", cartHandler.Purchase)
			}
		}

		tickets := api.Group("/tickets")
		tickets.Use(authRequired, anyRole)
		{
			tickets.GET("", ticketHandler.ListMine)
			tickets.GET("/:code", ticketHandler.GetTicket)
		}
	}

	return r
}
