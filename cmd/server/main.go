package main // Entry point package

import (
	"context" // Context for startup wiring
	"log"     // Logging library

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/crescendo-app/crescendo/internal/cache"      // Durable profile cache
	"github.com/crescendo-app/crescendo/internal/config"     // Internal config loader
	"github.com/crescendo-app/crescendo/internal/copyright"  // Generative copyright lookup
	"github.com/crescendo-app/crescendo/internal/database"   // MySQL connector
	"github.com/crescendo-app/crescendo/internal/docstore"   // Document collections over SQL
	"github.com/crescendo-app/crescendo/internal/handler"    // HTTP handlers
	"github.com/crescendo-app/crescendo/internal/middleware" // Rate limiting
	"github.com/crescendo-app/crescendo/internal/queue"      // Import event consumer
	"github.com/crescendo-app/crescendo/internal/router"     // Route registration
	"github.com/crescendo-app/crescendo/internal/session"    // Collection synchronizer
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win

	cfg := config.Load() // Load environment config
	ctx := context.Background()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional. Without it the store uses the in-process notifier,
	// the profile cache lives in memory and rate limiting is disabled.
	rdb := config.NewRedisClient()
	var notifier docstore.Notifier
	var profiles cache.ProfileCache
	if rdb != nil {
		notifier = docstore.NewRedisNotifier(rdb)
		profiles = cache.NewRedisCache(rdb)
	} else {
		log.Printf("redis unavailable, using in-process notifier and cache")
		notifier = docstore.NewMemoryNotifier()
		profiles = cache.NewMemoryCache()
	}

	store := docstore.New(db, notifier)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	sess := session.New(store, profiles)
	if err := sess.Start(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}
	defer sess.Close()
	if err := sess.WaitReady(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}

	// Copyright lookup is optional as well: without an API key the endpoint
	// reports itself unavailable instead of blocking startup.
	var lookups *copyright.Service
	if cfg.GeminiAPIKey != "" {
		lookups, err = copyright.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("copyright lookup disabled: %v", err)
			lookups = nil
		}
	}

	// Consume import-completed events in the background. The consumer
	// reconnects on its own; a returned error means it gave up for good.
	go func() {
		if err := queue.StartImportConsumer(); err != nil {
			log.Printf("import consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		router.Handlers{
			Auth:      handler.NewAuthHandler(cfg, sess),
			Library:   handler.NewLibraryHandler(sess),
			Concerts:  handler.NewConcertHandler(sess),
			Taxonomy:  handler.NewTaxonomyHandler(sess),
			Users:     handler.NewUsersHandler(sess),
			Imports:   handler.NewImportHandler(sess),
			Copyright: handler.NewCopyrightHandler(lookups),
		})

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
