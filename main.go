package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"gerejaku_backend/internals/configs"
	database "gerejaku_backend/internals/databases"
	scheduler "gerejaku_backend/internals/features/checkin/tokens/scheduler"
	middlewares "gerejaku_backend/internals/middlewares"
	routes "gerejaku_backend/internals/route"
	routeDetails "gerejaku_backend/internals/route/details"
)

func main() {
	configs.LoadEnv()

	checkinCfg, err := configs.LoadCheckinConfig()
	if err != nil {
		log.Fatalf("❌ Konfigurasi check-in tidak valid: %v", err)
	}

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"}, // sesuaikan dengan CIDR Cloudflare jika perlu
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching (token pakai no-store)

	// 🔎 Request-ID + timing + timeout guard (selaras dengan statement_timeout di DB)
	app.Use(middlewares.RequestContext(5 * time.Second))
	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrasi + warm-up
	database.ConnectDB()
	database.TunePool()
	if configs.GetBoolEnv("DB_AUTO_MIGRATE", false) {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatalf("❌ Migrasi gagal: %v", err)
		}
	}
	database.WarmUpQueries()

	checkin := routeDetails.NewCheckinDeps(database.DB, checkinCfg)

	// ⏱ sweep token kedaluwarsa setelah DB siap
	sweeper, err := scheduler.StartTokenSweepScheduler(checkin.Store, checkinCfg.SweepSchedule)
	if err != nil {
		log.Fatalf("❌ Gagal start token sweep: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, checkin)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + stop cron + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	<-sweeper.Stop().Done()

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
