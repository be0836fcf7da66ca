package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Optional .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/terrasale/terrasale-api/internal/config"     // Internal config loader
	"github.com/terrasale/terrasale-api/internal/database"   // MySQL pool
	"github.com/terrasale/terrasale-api/internal/database/migrations"
	"github.com/terrasale/terrasale-api/internal/handler"    // HTTP handlers
	"github.com/terrasale/terrasale-api/internal/middleware" // rate limiting
	"github.com/terrasale/terrasale-api/internal/notify"     // Slack webhook client
	"github.com/terrasale/terrasale-api/internal/queue"      // AMQP consumer
	"github.com/terrasale/terrasale-api/internal/repository" // DB repositories
	"github.com/terrasale/terrasale-api/internal/router"     // Route registration
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBCharset)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := migrations.MigrateUp(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable; limiter fails open

	slack := notify.NewClient(cfg.SlackWebhook, cfg.SlackChannel)
	if !slack.Enabled() {
		log.Println("slack: webhook not configured, notifications disabled")
	}

	users := repository.NewUserRepo(db)
	sellers := repository.NewSellerRepo(users)
	properties := repository.NewPropertyRepo(db)
	contacts := repository.NewContactRepo(db)
	sales := repository.NewSaleRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = router.NewErrorHandler(cfg.Env)
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.Register(e, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users),
		Users:      handler.NewUserHandler(cfg, users, slack),
		Sellers:    handler.NewSellerHandler(cfg, sellers, slack),
		Properties: handler.NewPropertyHandler(properties, slack),
		Contacts:   handler.NewContactHandler(contacts, slack),
		Sales:      handler.NewSaleHandler(sales, slack),
		Slack:      handler.NewSlackHandler(slack),
	})

	// Drain sale.recorded events into logs/sales.log in the background.
	go func() {
		if err := queue.StartSaleConsumer(); err != nil {
			log.Printf("sale consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
