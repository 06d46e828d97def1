// Package app owns the process lifecycle: it opens every connection once,
// wires repositories, services and handlers, and closes everything on shutdown.
package app

import (
	"context"
	"fmt"

	"shopfront/internal/config"
	"shopfront/internal/database"
	"shopfront/internal/handlers"
	"shopfront/internal/middleware"
	"shopfront/internal/repositories"
	"shopfront/internal/services"
	"shopfront/pkg/cache"
	"shopfront/pkg/mongodb"
	"shopfront/pkg/payment"
	"shopfront/pkg/rabbitmq"
	"shopfront/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// App is the running service.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	fiber  *fiber.App
	checks map[string]handlers.HealthCheck
	// closers run in reverse order on Shutdown.
	closers []func() error
}

type stores struct {
	orders   repositories.OrderRepository
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
}

type collaborators struct {
	events   services.EventPublisher
	cache    services.JSONCache
	uploader services.ImageUploader
	checkout services.CheckoutGateway
}

// New opens the configured connections and builds the HTTP router. The
// document and SQL stores are required; Redis, RabbitMQ, S3 and Stripe are
// enabled only when configured.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    log,
		checks: make(map[string]handlers.HealthCheck),
	}

	st, err := a.openStores(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	co, err := a.openCollaborators(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	a.fiber = a.buildRouter(st, co)
	return a, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	var st stores

	db, err := database.Open(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN)
	if err != nil {
		return st, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	a.checks["sql"] = func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	st.users = repositories.NewGORMUserRepository(db)
	a.log.Info("user store ready", zap.String("driver", a.cfg.DatabaseDriver))

	switch a.cfg.StorageDriver {
	case config.StorageMongo:
		client, err := mongodb.Connect(ctx, mongodb.Config{URI: a.cfg.MongoURI, Database: a.cfg.MongoDatabase}, a.log)
		if err != nil {
			return st, err
		}
		a.closers = append(a.closers, client.Close)
		a.checks["mongodb"] = client.Ping
		st.orders = repositories.NewMongoOrderRepository(client.DB)
		st.reviews = repositories.NewMongoReviewRepository(client.DB)
		st.products = repositories.NewMongoProductRepository(client.DB)
	case config.StorageMemory:
		st.orders = repositories.NewMockOrderRepository()
		st.reviews = repositories.NewMockReviewRepository()
		st.products = repositories.NewMockProductRepository()
		a.log.Warn("using in-memory document store, data is lost on restart")
	default:
		return st, fmt.Errorf("unsupported storage driver %q", a.cfg.StorageDriver)
	}
	return st, nil
}

func (a *App) openCollaborators(ctx context.Context) (collaborators, error) {
	var co collaborators

	if a.cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: a.cfg.RabbitMQURL}, a.log)
		if err != nil {
			a.log.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, mq.Close)
			co.events = mq
			if err := mq.ConsumeEvents(a.logEvent); err != nil {
				a.log.Warn("failed to start event consumer", zap.Error(err))
			}
		}
	}

	if a.cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, a.cfg.RedisURL, "reviews:")
		if err != nil {
			a.log.Warn("Redis unavailable, review cache disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, rc.Close)
			a.checks["redis"] = rc.Ping
			co.cache = rc
		}
	}

	if a.cfg.S3Bucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, storage.Config{
			Bucket:        a.cfg.S3Bucket,
			Region:        a.cfg.AWSRegion,
			Endpoint:      a.cfg.AWSEndpoint,
			PublicBaseURL: a.cfg.S3PublicBaseURL,
		})
		if err != nil {
			return co, err
		}
		co.uploader = uploader
	} else {
		a.log.Warn("S3_BUCKET not set, review images are rejected")
	}

	if a.cfg.StripeSecretKey != "" {
		co.checkout = payment.NewStripeGateway(a.cfg.StripeSecretKey, a.cfg.StripeCurrency, a.cfg.FrontendURL)
	}
	return co, nil
}

// logEvent is the consumer side of the event exchange. Downstream services
// subscribe to the same exchange; here every event is only recorded.
func (a *App) logEvent(msg amqp.Delivery) error {
	a.log.Info("event received",
		zap.String("routing_key", msg.RoutingKey),
		zap.Uint64("delivery_tag", msg.DeliveryTag),
		zap.ByteString("body", msg.Body))
	return nil
}

func (a *App) buildRouter(st stores, co collaborators) *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:      "shopfront",
		ErrorHandler: handlers.NewErrorHandler(a.log, a.cfg.IsDevelopment()),
		BodyLimit:    a.cfg.BodyLimitMB << 20,
	})

	f.Use(recover.New())
	f.Use(middleware.RequestLogger(a.log))
	f.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin,Content-Type,Accept,token,X-Request-ID",
	}))

	authService := services.NewAuthService(st.users, a.cfg.JWTSecret, services.AdminCredentials{
		Email:    a.cfg.AdminEmail,
		Password: a.cfg.AdminPassword,
	}, a.log)
	productService := services.NewProductService(st.products, a.log)
	orderService := services.NewOrderService(st.orders, st.products, st.reviews, co.events, co.checkout, a.log)
	reviewService := services.NewReviewService(st.reviews, st.orders, st.users, co.uploader, co.cache, a.cfg.ReviewCacheTTL, co.events, a.log)
	analyticsService := services.NewAnalyticsService(st.orders, st.products)

	userAuth := middleware.UserAuth(authService)
	adminAuth := middleware.AdminAuth(authService)

	api := f.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewProductHandler(productService).RegisterRoutes(api, adminAuth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, userAuth, adminAuth)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(api, userAuth)
	handlers.NewAnalyticsHandler(analyticsService).RegisterRoutes(api, adminAuth)

	f.Get("/health", handlers.NewHealthHandler(a.checks, a.cfg.IsDevelopment()).HandleHealth)

	f.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
	return f
}

// Fiber exposes the router, mainly for app.Test in tests.
func (a *App) Fiber() *fiber.App {
	return a.fiber
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	a.log.Info("starting server", zap.String("addr", a.cfg.AppPort), zap.String("env", a.cfg.AppEnv))
	return a.fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// every connection opened by New.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.fiber != nil {
		if err := a.fiber.ShutdownWithContext(ctx); err != nil {
			firstErr = fmt.Errorf("failed to shut down http server: %w", err)
		}
	}
	if err := a.closeAll(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *App) closeAll() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("failed to close resource", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	a.closers = nil
	return firstErr
}
