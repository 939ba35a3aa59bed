package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/leehai1107/shop-service/internal/cache"
	"github.com/leehai1107/shop-service/internal/catalog"
	h "github.com/leehai1107/shop-service/internal/http"
	"github.com/leehai1107/shop-service/internal/orders"
	"github.com/leehai1107/shop-service/internal/poller"
	"github.com/leehai1107/shop-service/internal/publisher"
	"github.com/leehai1107/shop-service/internal/repository"
	"github.com/leehai1107/shop-service/internal/service"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName string `envconfig:"MONGO_DB_NAME" default:"cartdb"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"ordersdb"`
	MigrationsPath   string `envconfig:"MIGRATIONS_PATH" default:"./migrations"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	CommerceAPIURL  string        `envconfig:"COMMERCE_API_URL" default:"http://localhost:9000"`
	CommerceAPIKey  string        `envconfig:"COMMERCE_API_KEY" default:""`
	CommerceTimeout time.Duration `envconfig:"COMMERCE_TIMEOUT" default:"10s"`
	OrderFormMarker string        `envconfig:"ORDER_FORM_MARKER" default:"order"`
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	ctx := context.Background()

	// MongoDB, cart storage
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to mongodb")
	}
	repo := repository.NewMongoRepository(mongoDB)
	logrus.WithField("uri", cfg.MongoURI).Info("connected to mongodb")

	// Redis, cart cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Fatal("redis connection failed")
	}
	cartCache := cache.NewRedisCache(redisClient)

	// Postgres, order submissions
	creds := &orders.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	ordersRepo, err := orders.NewRepository(creds)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to postgres")
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(creds); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	// Commerce API client
	commerce := catalog.NewHTTPClient(cfg.CommerceAPIURL, cfg.CommerceAPIKey, cfg.CommerceTimeout)

	cartService := service.NewCartService(repo, cartCache, commerce)
	checkoutService := service.NewCheckoutService(ordersRepo, cartService, commerce, commerce, cfg.OrderFormMarker)

	brokers := strings.Split(cfg.KafkaBrokers, ",")

	// background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	outbox := publisher.NewOutboxPoller(ordersRepo, brokers...)
	go outbox.Run(workerCtx)

	cartClearer := poller.NewPoller(repo, cartCache, brokers...)
	defer cartClearer.Close()
	go cartClearer.Run(workerCtx)

	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	deliveryHandler := h.NewDeliveryHandler(commerce, cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.AuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/total", cartHandler.GetTotal)
			r.Put("/delivery", cartHandler.SetDelivery)
			r.Post("/items", cartHandler.AddItem)
			r.Route("/items/{product_id}", func(r chi.Router) {
				r.Put("/", cartHandler.UpdateQuantity)
				r.Delete("/", cartHandler.RemoveItem)
				r.Post("/increment", cartHandler.IncrementItem)
				r.Post("/decrement", cartHandler.DecrementItem)
				r.Post("/toggle", cartHandler.ToggleSelected)
			})
		})
		r.Get("/delivery/intervals", deliveryHandler.GetIntervals)
		r.Post("/checkout", checkoutHandler.InitiateCheckout)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.HTTPPort).Info("storefront service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		logrus.WithError(err).Error("mongodb disconnect failed")
	}

	logrus.Info("server exited")
}
