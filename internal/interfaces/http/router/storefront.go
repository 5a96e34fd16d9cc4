package router

import (
	"github.com/gin-gonic/gin"
	_ "github.com/storefront/backend/docs"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers bundles every endpoint handler
type Handlers struct {
	Health     *handler.HealthHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Brands     *handler.BrandHandler
	Cart       *handler.CartHandler
	Wishlist   *handler.WishlistHandler
}

// EngineOptions configures the global middleware chain
type EngineOptions struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Auth           middleware.AuthConfig
	Docs           middleware.SwaggerConfig
}

// NewEngine builds the gin engine with the storefront routes mounted
func NewEngine(opts EngineOptions, h Handlers) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		middleware.SpanAnnotator(),
		middleware.Secure(),
		middleware.CORSWithConfig(opts.CORS),
		middleware.BodyLimit(opts.MaxBodySize),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, dto.NewErrorResponseWithRequestID(dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	auth := middleware.Auth(opts.Auth)
	engine.GET("/swagger/*any", middleware.SwaggerProtection(opts.Docs, auth), ginSwagger.WrapHandler(swaggerFiles.Handler))

	NewRouter(engine).
		Register(StorefrontRoutes(h, auth)...).
		Setup()
	return engine, nil
}

// StorefrontRoutes declares the /api/v1 surface. auth resolves the caller;
// admin routes additionally require the admin role.
func StorefrontRoutes(h Handlers, auth gin.HandlerFunc) []RouteRegistrar {
	health := NewDomainGroup("health", "/health").
		GET("", h.Health.Check)

	products := NewDomainGroup("products", "/products").
		GET("", h.Products.ListListed).
		GET("/:id", h.Products.GetListed)

	cart := NewDomainGroup("cart", "/cart").Use(auth).
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PATCH("/items", h.Cart.UpdateItem).
		DELETE("/items", h.Cart.RemoveItem).
		POST("/prune", h.Cart.Prune).
		GET("/validate", h.Cart.Validate).
		POST("/checkout", h.Cart.Checkout)

	wishlist := NewDomainGroup("wishlist", "/wishlist").Use(auth).
		GET("", h.Wishlist.Get).
		POST("/:productId", h.Wishlist.Add).
		DELETE("/:productId", h.Wishlist.Remove).
		POST("/:productId/toggle", h.Wishlist.Toggle)

	admin := NewDomainGroup("admin", "/admin").Use(auth, middleware.RequireAdmin())
	admin.Group("products", "/products").
		POST("", h.Products.Create).
		GET("/:id", h.Products.Get).
		PUT("/:id", h.Products.Update).
		DELETE("/:id", h.Products.Delete).
		PATCH("/:id/offer", h.Products.SetOffer).
		PATCH("/:id/variants/:size", h.Products.UpdateVariant).
		POST("/:id/list", h.Products.List).
		POST("/:id/unlist", h.Products.Unlist).
		POST("/:id/restore", h.Products.Restore)
	admin.Group("categories", "/categories").
		POST("", h.Categories.Create).
		GET("", h.Categories.List).
		GET("/:id", h.Categories.Get).
		PUT("/:id", h.Categories.Update).
		DELETE("/:id", h.Categories.Delete).
		PATCH("/:id/offer", h.Categories.SetOffer).
		POST("/:id/activate", h.Categories.Activate).
		POST("/:id/deactivate", h.Categories.Deactivate).
		POST("/:id/restore", h.Categories.Restore)
	admin.Group("brands", "/brands").
		POST("", h.Brands.Create).
		GET("", h.Brands.List).
		GET("/:id", h.Brands.Get).
		PUT("/:id", h.Brands.Rename).
		DELETE("/:id", h.Brands.Delete).
		PATCH("/:id/offer", h.Brands.SetOffer).
		POST("/:id/activate", h.Brands.Activate).
		POST("/:id/deactivate", h.Brands.Deactivate).
		POST("/:id/restore", h.Brands.Restore)

	return []RouteRegistrar{health, products, cart, wishlist, admin}
}
