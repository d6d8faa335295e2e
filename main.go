package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/analytics"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/billing"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/cache"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/database"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/env"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/router"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/session"
)

func main() {
	app := NewApplication()

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	refreshDone := startAnalyticsRefresh(refreshCtx)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		stopRefresh()
		<-refreshDone
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		if err := session.Shutdown(); err != nil {
			log.Printf("session store close error: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		AppName: "SmartRisk",
	})
	app.Use(recover.New(), logger.New())

	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	router.InstallRouter(app)

	return app
}

func startAnalyticsRefresh(ctx context.Context) <-chan struct{} {
	stripeClient, err := billing.NewStripeClientFromEnv()
	if err != nil {
		log.Printf("stripe client unavailable, analytics will use fallback figures: %v", err)
	}
	svc := analytics.NewService(repository.GetGlobalRepositories(), stripeClient)
	return svc.StartPeriodicRefresh(ctx, 5*time.Minute)
}
