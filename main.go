package main

import (
	"crypto/tls"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/jmrodillon/portfolio-backend/config"
	"github.com/jmrodillon/portfolio-backend/handlers"
	"github.com/jmrodillon/portfolio-backend/logger"
	"github.com/jmrodillon/portfolio-backend/router"
	"github.com/jmrodillon/portfolio-backend/services"
	"github.com/jmrodillon/portfolio-backend/store/redisblob"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis clients with TLS in production
	primary := redis.NewClient(redisOptions(cfg, cfg.Redis.Address))

	var replica *redis.Client
	if cfg.Redis.ReplicaAddress != "" {
		replica = redis.NewClient(redisOptions(cfg, cfg.Redis.ReplicaAddress))
	}

	blobStore := redisblob.New(primary, replica)

	// Initialize services
	rateLimiter := services.NewRateLimitService(blobStore, cfg.RateLimit.MaxPerWindow, cfg.RateLimit.Window())
	testimonialService := services.NewTestimonialService(blobStore, rateLimiter)

	// Handlers
	testimonialHandler := handlers.NewTestimonialHandler(testimonialService)
	healthHandler := handlers.NewHealthHandler(blobStore)

	// Router setup
	r := router.SetupRouter(router.Dependencies{
		Config:             cfg,
		TestimonialHandler: testimonialHandler,
		HealthHandler:      healthHandler,
	})

	log.Infof("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func redisOptions(cfg *config.Config, address string) *redis.Options {
	options := &redis.Options{
		Addr:     address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	if cfg.IsProduction() {
		// ServerName is left empty so go-redis fills it from the address
		// host when dialing.
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return options
}
