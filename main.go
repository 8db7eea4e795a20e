package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"archery-competition-system/handlers"
	"archery-competition-system/models"
	"archery-competition-system/services"
	"archery-competition-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "archery-competition-system",
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Archer{},
		&models.Series{},
		&models.Result{},
		&models.RankOverride{},
		&models.Category{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := models.SeedDefaultCategories(db); err != nil {
		log.Fatal("failed to seed categories:", err)
	}

	if err := utils.EnsureSnapshotDir(); err != nil {
		log.Fatal("failed to ensure snapshot dir:", err)
	}
	if utils.R2Enabled() {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	}

	archerService := services.NewArcherService(db)
	seriesService := services.NewSeriesService(db)
	resultService := services.NewResultService(db)
	rankingService := services.NewRankingService(db)
	exportService := services.NewExportService(db)

	exportService.StartSnapshotScheduler()

	handlers.SetupArcherRoutes(app, archerService)
	handlers.SetupSeriesRoutes(app, seriesService)
	handlers.SetupResultRoutes(app, resultService)
	handlers.SetupRankingRoutes(app, rankingService)
	handlers.SetupExportRoutes(app, exportService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5300"
	}

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", addr)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
