// main.go - Entry point for the inventory backend server

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-backend/auth"
	"go-inventory-backend/config"
	"go-inventory-backend/database"
	"go-inventory-backend/events"
	"go-inventory-backend/handlers"
	"go-inventory-backend/middleware"
	"go-inventory-backend/models"
	"go-inventory-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// STEP 1: Load configuration and establish connections
	cfg := config.Load()
	log.Printf("starting: db=%s storage=%s port=%s", cfg.DBDriver, cfg.StorageBackend, cfg.Port)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("DB connection error: ", err)
	}
	if cfg.SeedEmail != "" {
		if err := database.Seed(db, cfg.SeedEmail); err != nil {
			log.Println("seed:", err)
		}
	}

	media, uploadDir, err := openStorage(cfg)
	if err != nil {
		log.Fatal("storage error: ", err)
	}

	dispatcher, closeEvents := openEvents(cfg)
	defer closeEvents()

	// STEP 2: Build services and the router
	users := models.NewUsersRepository(db)
	authenticator := auth.NewAuthenticator(users, auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL))

	h := handlers.New(handlers.Options{
		Users:              users,
		Credentials:        authenticator,
		Categories:         models.NewCategoriesRepository(db),
		Products:           models.NewProductsRepository(db),
		Reports:            models.NewReportsRepository(db),
		Media:              media,
		Events:             dispatcher,
		UniqueProductCodes: cfg.UniqueProductCodes,
	})

	r := handlers.NewRouter(h, authenticator, handlers.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
		Limiter:     rateLimiter(cfg),
	})

	// STEP 3: Start the web server and wait for a shutdown signal
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("shutdown:", err)
	}
}

// openStorage returns the media store and, for the local backend, the
// directory to serve at /uploads.
func openStorage(cfg *config.Config) (storage.Store, string, error) {
	switch cfg.StorageBackend {
	case "s3":
		client, err := storage.NewS3Client(context.Background(), storage.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return storage.NewS3Store(client, cfg.S3Bucket, cfg.S3PublicURL), "", nil
	default:
		local, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, "", err
		}
		return local, local.Root(), nil
	}
}

// openEvents publishes to MQTT when a broker is configured and to the log
// otherwise.
func openEvents(cfg *config.Config) (*events.Dispatcher, func()) {
	var pub events.Publisher = events.LogPublisher{}
	var mqttPub *events.MQTTPublisher
	if cfg.MQTTBroker != "" {
		p, err := events.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTTopic)
		if err != nil {
			log.Println("MQTT connection error, logging events instead:", err)
		} else {
			mqttPub = p
			pub = p
		}
	}

	d := events.NewDispatcher(pub, events.DefaultQueueSize)
	return d, func() {
		d.Close()
		if mqttPub != nil {
			mqttPub.Disconnect()
		}
	}
}

func rateLimiter(cfg *config.Config) gin.HandlerFunc {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Println("redis unavailable, using in-memory rate limit:", err)
			client.Close()
		} else {
			return middleware.RedisRateLimit(client, cfg.RateLimitPerMinute, time.Minute)
		}
	}
	return middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute)
}
