package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/cache"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/database"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/env"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/router"
)

// Same server as the repository root main, for running out of cmd/smartrisk
// during development where the working directory differs.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{AppName: "SmartRisk"})
	app.Use(recover.New(), logger.New())

	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	if docs := findOpenAPISpec(); docs != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: docs,
			Path:     "v1",
		}))
	} else {
		log.Print("openapi.yml not found, API docs disabled")
	}

	router.InstallRouter(app)

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	log.Fatal(app.Listen(addr))
}

func findOpenAPISpec() string {
	for _, base := range []string{"./", "../../", "../../../"} {
		candidate := filepath.Join(base, "public/docs/v1/openapi.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
