package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/storelabs/storefront-service/config"
	"github.com/storelabs/storefront-service/internal/auth"
	"github.com/storelabs/storefront-service/internal/pkg/broker"
	"github.com/storelabs/storefront-service/internal/pkg/cache"
	"github.com/storelabs/storefront-service/internal/pkg/database"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"github.com/storelabs/storefront-service/internal/storage/memory"

	categorypkg "github.com/storelabs/storefront-service/internal/category"
	catH "github.com/storelabs/storefront-service/internal/category/handler"
	catRepoPkg "github.com/storelabs/storefront-service/internal/category/repository"
	catUCPkg "github.com/storelabs/storefront-service/internal/category/usecase"

	productpkg "github.com/storelabs/storefront-service/internal/product"
	prodH "github.com/storelabs/storefront-service/internal/product/handler"
	prodRepoPkg "github.com/storelabs/storefront-service/internal/product/repository"
	prodUCPkg "github.com/storelabs/storefront-service/internal/product/usecase"

	cartpkg "github.com/storelabs/storefront-service/internal/cart"
	cartH "github.com/storelabs/storefront-service/internal/cart/handler"
	cartRepoPkg "github.com/storelabs/storefront-service/internal/cart/repository"
	cartUCPkg "github.com/storelabs/storefront-service/internal/cart/usecase"

	orderpkg "github.com/storelabs/storefront-service/internal/order"
	orderH "github.com/storelabs/storefront-service/internal/order/handler"
	orderRepoPkg "github.com/storelabs/storefront-service/internal/order/repository"
	orderUCPkg "github.com/storelabs/storefront-service/internal/order/usecase"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := logger.New(&logger.Config{
		Level:             cfg.Logger.Level,
		Encoding:          cfg.Logger.Encoding,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	// Repositories: postgres in production, in-process storage for local
	// development.
	var (
		catRepo   categorypkg.Repository
		prodRepo  productpkg.Repository
		cartRepo  cartpkg.Repository
		orderRepo orderpkg.Repository
	)

	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		catRepo = memory.NewCategoryRepository(store)
		prodRepo = memory.NewProductRepository(store)
		cartRepo = memory.NewCartRepository(store)
		orderRepo = memory.NewOrderRepository(store)
		appLogger.Info("Using in-memory storage")
	default:
		db, err := database.NewPostgres(&database.PostgresConfig{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		catRepo = catRepoPkg.NewPGRepository(db)
		prodRepo = prodRepoPkg.NewPGRepository(db)
		cartRepo = cartRepoPkg.NewPGRepository(db)
		orderRepo = orderRepoPkg.NewPGRepository(db, time.Duration(cfg.Postgres.LockTimeoutMS)*time.Millisecond)
	}

	// Cache is strictly an optimization: if redis is down the service runs
	// uncached rather than refusing to start.
	var cacheStore cache.Store
	redisStore, err := cache.NewRedisStore(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis, running without cache", zap.Error(err))
		cacheStore = cache.NewNoop()
	} else {
		cacheStore = redisStore
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}
	defer cacheStore.Close()

	var producer *broker.Producer
	if cfg.Kafka.Enabled {
		producer = broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		defer producer.Close()
		appLogger.Info("Kafka producer enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	catUC := catUCPkg.NewCategoryUseCase(catRepo, cacheStore, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, catRepo, cacheStore, producer, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodRepo, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, cacheStore, producer, appLogger)

	catHandler := catH.NewCategoryHandler(catUC, appLogger)
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	cartHandler := cartH.NewCartHandler(cartUC, appLogger)
	orderHandler := orderH.NewOrderHandler(orderUC, appLogger)

	if cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/products", prodHandler.List)
		api.GET("/products/:id", prodHandler.Get)
		api.GET("/categories", catHandler.List)

		user := api.Group("", auth.RequireUser())
		{
			user.GET("/cart", cartHandler.Get)
			user.POST("/cart/add", cartHandler.Add)
			user.PUT("/cart/update", cartHandler.Update)
			user.DELETE("/cart/remove/:productId", cartHandler.Remove)
			user.POST("/cart/checkout", orderHandler.Checkout)
			user.GET("/orders", orderHandler.List)
			user.GET("/orders/:id", orderHandler.Get)
		}

		admin := api.Group("/admin", auth.RequireUser(), auth.RequireAdmin())
		{
			admin.POST("/categories", catHandler.Create)
			admin.DELETE("/categories/:id", catHandler.Delete)
			admin.POST("/products", prodHandler.Create)
			admin.POST("/products/:id/restock", prodHandler.Restock)
			admin.POST("/products/:id/stock", prodHandler.AdjustStock)
			admin.POST("/products/:id/price", prodHandler.AdjustPrice)
			admin.GET("/products/:id/ledger", prodHandler.ListLedger)
		}
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
