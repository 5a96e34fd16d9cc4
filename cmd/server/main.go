package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	shoppingapp "github.com/storefront/backend/internal/application/shopping"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/mongostore"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// repositories is the storage backend selected by configuration
type repositories struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	brands     catalog.BrandRepository
	carts      shopping.CartRepository
	wishlists  shopping.WishlistRepository
	health     map[string]handler.HealthCheck
	close      func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meters, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	logs, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logs.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	cartMetrics, err := telemetry.NewCartMetrics(meters.Meter(telemetry.TracerName))
	if err != nil {
		log.Fatal("Failed to register cart metrics", zap.Error(err))
	}

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}

	locker, redisClient, err := cache.NewCartLockerFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.IsDevelopment()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cart lock", zap.Error(err))
	}
	if redisClient != nil {
		repos.health["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	bus := event.NewInMemoryEventBus(log)

	lineages := catalog.NewRepositoryLineageLoader(repos.products, repos.categories, repos.brands)
	skus := catalog.NewSKUGenerator(repos.products, cfg.Catalog.SKUMaxAttempts)

	productService := catalogapp.NewProductService(repos.products, repos.categories, repos.brands, skus, bus, log)
	categoryService := catalogapp.NewCategoryService(repos.categories, bus, log)
	brandService := catalogapp.NewBrandService(repos.brands, bus, log)
	cartService := shoppingapp.NewCartService(repos.carts, repos.wishlists, lineages, locker, shoppingapp.CartConfig{
		LockTTL:     cfg.Cart.LockTTL,
		MaxAttempts: cfg.Cart.RetryAttempts,
	}, log).WithMetrics(cartMetrics)
	wishlistService := shoppingapp.NewWishlistService(repos.wishlists, repos.carts, lineages, log)

	bus.Subscribe(shoppingapp.NewWishlistPruneHandler(repos.wishlists, repos.products, log))

	jwtService := auth.NewJWTService(cfg.JWT)
	engine, err := router.NewEngine(router.EngineOptions{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracer.Enabled(),
		CORS:           middleware.CORSConfigFrom(cfg.HTTP),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Auth: middleware.AuthConfig{
			JWTService:          jwtService,
			AllowHeaderIdentity: cfg.App.IsDevelopment(),
			Logger:              log,
		},
		Docs: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, router.Handlers{
		Health:     handler.NewHealthHandler(repos.health),
		Products:   handler.NewProductHandler(productService),
		Categories: handler.NewCategoryHandler(categoryService),
		Brands:     handler.NewBrandHandler(brandService),
		Cart:       handler.NewCartHandler(cartService),
		Wishlist:   handler.NewWishlistHandler(wishlistService),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}
	if err := repos.close(shutdownCtx); err != nil {
		log.Error("Error closing storage", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer", zap.Error(err))
	}
	if err := meters.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := logs.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverMongo {
		return openMongo(ctx, cfg, log)
	}
	return openPostgres(cfg, log)
}

func openPostgres(cfg *config.Config, log *zap.Logger) (*repositories, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), telemetry.DefaultSlowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	if err := telemetry.NewDBTracing(cfg.Telemetry, "postgresql", log).Register(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Database connected successfully")

	return &repositories{
		products:   persistence.NewGormProductRepository(db.DB),
		categories: persistence.NewGormCategoryRepository(db.DB),
		brands:     persistence.NewGormBrandRepository(db.DB),
		carts:      persistence.NewGormCartRepository(db.DB),
		wishlists:  persistence.NewGormWishlistRepository(db.DB),
		health: map[string]handler.HealthCheck{
			"database": func(context.Context) error { return db.Ping() },
		},
		close: func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repositories, error) {
	store, err := mongostore.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		return nil, err
	}

	return &repositories{
		products:   mongostore.NewProductRepository(store),
		categories: mongostore.NewCategoryRepository(store),
		brands:     mongostore.NewBrandRepository(store),
		carts:      mongostore.NewCartRepository(store),
		wishlists:  mongostore.NewWishlistRepository(store),
		health: map[string]handler.HealthCheck{
			"database": store.Ping,
		},
		close: store.Close,
	}, nil
}
