package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"expressbuy/internal/config"
	"expressbuy/internal/events"
	"expressbuy/internal/http/handlers"
	applog "expressbuy/internal/log"
	"expressbuy/internal/metrics"
	"expressbuy/internal/payment"
	"expressbuy/internal/repos"
	"expressbuy/internal/storage"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	images, err := storage.NewDisk(cfg.MediaDir, cfg.MediaURL)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.PaystackSecret == "" {
		log.Printf("[warn] PAYSTACK_SECRET_KEY is empty; payment calls will be rejected by the gateway")
	}
	gateway := payment.NewPaystack(cfg.PaystackBaseURL, cfg.PaystackSecret, cfg.PaystackCallback, cfg.GatewayTimeout)
	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if c, ok := publisher.(io.Closer); ok {
		defer c.Close()
	}
	m := metrics.New()

	deps := handlers.NewDeps(db, cfg, gateway, publisher, images, m)

	app := fiber.New(fiber.Config{
		AppName:      "expressbuy",
		ErrorHandler: handlers.ErrorHandler,
		// Product images are the largest bodies.
		BodyLimit: storage.MaxImageBytes + 1<<20,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(m.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/media/") || p == "/metrics" || p == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, retry soon")
		},
	}))

	log.Printf("[static] %s -> %s", cfg.MediaURL, cfg.MediaDir)
	app.Get(cfg.MediaURL+"/*", handlers.Media(cfg.MediaDir))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "health.db", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", m.Handler())

	// Credential endpoints are throttled per IP.
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	})
	deps.Mount(app.Group("/api/v1"), loginLimiter)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("[server] listen: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("[server] shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
}
