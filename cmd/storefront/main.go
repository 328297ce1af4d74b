package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/cache"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/cart"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/catalog"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/checkout"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/client"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/events"
	h "github.com/AnhMinhTruongHoang/bookstore-storefront/internal/http"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/payment"
	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/store"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	MongoMaxPool    uint64
	MongoMinPool    uint64
	RedisAddr       string
	RedisPassword   string
	BackendAPIURL   string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		MongoMaxPool:    uintEnv("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPool:    uintEnv("MONGO_MIN_POOL_SIZE", 10),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		BackendAPIURL:   getEnv("BACKEND_API_URL", "http://localhost:3000"),
		KafkaBrokers:    brokers,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func uintEnv(key string, defaultValue uint64) uint64 {
	value, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	mongoDB, err := store.ConnectMongoDB(ctx, store.MongoConfig{
		URI:         cfg.MongoURI,
		Database:    cfg.MongoDBName,
		MaxPoolSize: cfg.MongoMaxPool,
		MinPoolSize: cfg.MongoMinPool,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	cartStore := store.NewMongoStore(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	cartCache := cache.NewRedisCache(redisClient)
	cartService := cart.NewService(cartStore, cartCache)

	orderClient := client.NewOrderClient(cfg.BackendAPIURL, cfg.RequestTimeout)
	paymentClient := client.NewPaymentClient(cfg.BackendAPIURL, cfg.RequestTimeout)
	bookClient := catalog.NewClient(cfg.BackendAPIURL, cfg.RequestTimeout)

	var sink checkout.EventSink
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(cfg.KafkaBrokers...)
		defer publisher.Close()
		sink = publisher
		log.Printf("Publishing order events to %v", cfg.KafkaBrokers)
	}

	checkoutManager := checkout.NewManager(cartService, orderClient, sink)
	returnHandler := payment.NewReturnHandler(paymentClient)

	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutManager, cfg.RequestTimeout)
	paymentHandler := h.NewPaymentHandler(returnHandler, cfg.RequestTimeout)
	catalogHandler := h.NewCatalogHandler(bookClient, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(orderClient, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/merge", cartHandler.MergeCart)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.CurrentStep)
			r.Post("/begin", checkoutHandler.Begin)
			r.Post("/next", checkoutHandler.Next)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/submit", checkoutHandler.Submit)
		})
		r.Get("/books", catalogHandler.ListBooks)
		r.Get("/orders/history", ordersHandler.ListHistory)
	})
	r.Get("/payment/return", paymentHandler.Return)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(ctx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}

	log.Println("server exited")
}
