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
	html "github.com/gofiber/template/html/v2"

	"quickclean/internal/assets"
	"quickclean/internal/config"
	"quickclean/internal/http/handlers"
	applog "quickclean/internal/log"
	"quickclean/internal/realtime"
	"quickclean/internal/repos"
	"quickclean/internal/services"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required in production")
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := repos.SeedPartnerStore(db, cfg.PartnerStore, "Yahoo junction"); err != nil {
		log.Fatal(err)
	}
	if err := repos.SeedAdmin(db, cfg.SeedAdminUser, cfg.SeedAdminPassword, cfg.SeedAdminWhatsApp, false); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	go hub.Run(ctx)

	var extra []services.Notifier
	if sink, err := realtime.NewSNSSink(ctx, cfg.AWSRegion, cfg.EventsTopicARN); err != nil {
		applog.Error(nil, "sns.init", err, nil)
	} else if sink != nil {
		extra = append(extra, sink)
	}
	store, err := assets.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3PublicBase)
	if err != nil {
		applog.Error(nil, "s3.init", err, nil)
		store = &assets.S3Store{}
	}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(!cfg.Production())

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    11 << 20, // uploads are capped at 10 MiB by the handler
		ErrorHandler: handlers.ErrorHandler(cfg.Production()),
	})

	// ---------- Middlewares ----------
	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.Production()}))
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, x-internal-secret",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/ws/")
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, hub, store, extra...)
	handlers.Mount(app, deps)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "env": cfg.Env})
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
